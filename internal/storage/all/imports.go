// Package all registers every built-in storage dialect. Import it for side
// effects from the wiring layer:
//
//	import _ "github.com/Ratebah20/HR-plateform-learning/internal/storage/all"
package all

import (
	_ "github.com/Ratebah20/HR-plateform-learning/internal/storage/mssql"
	_ "github.com/Ratebah20/HR-plateform-learning/internal/storage/mysql"
	_ "github.com/Ratebah20/HR-plateform-learning/internal/storage/postgres"
)
