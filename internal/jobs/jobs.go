// Package jobs declares the five import jobs. Each is a schema.Spec value
// consumed by the shared pipeline; nothing here performs I/O.
package jobs

import (
	"fmt"
	"sort"

	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

func text(h, n string) schema.Field    { return schema.Field{Header: h, Name: n, Kind: schema.KindText} }
func numeric(h, n string) schema.Field { return schema.Field{Header: h, Name: n, Kind: schema.KindNumeric} }
func date(h, n string) schema.Field    { return schema.Field{Header: h, Name: n, Kind: schema.KindDate} }
func flag(h, n string) schema.Field    { return schema.Field{Header: h, Name: n, Kind: schema.KindBoolPrefix} }

var (
	yearParam = schema.ParamSpec{Flag: "annee", Name: "annee", Kind: schema.ParamYear, Required: true}
	dateParam = schema.ParamSpec{Flag: "date", Name: "date", Kind: schema.ParamDate}
)

// OLU is the learning-platform completion report.
var OLU = schema.Spec{
	Name:        "olu",
	Description: "Import the OLU training report",
	Fields: []schema.Field{
		text("Utilisateur - ID d'utilisateur", "id_utilisateur"),
		text("Utilisateur - Sexe de l'utilisateur", "sexe_utilisateur"),
		text("Utilisateur - Manager - Nom complet", "manager_nom"),
		text("Formation - Titre de la formation", "titre_formation"),
		text("Récapitulatif - Statut", "statut"),
		date("Récapitulatif - Date d'inscription", "date_inscription"),
		date("Récapitulatif - Date d'achèvement", "date_achevement"),
		numeric("Formation - Heures de formation", "heures_formation"),
		text("Formation - Type de formation", "type_formation"),
		text("Récapitulatif - Assigné par", "assigne_par"),
	},
	StagingTable: "TempOLU",
	Procedure:    "sp_ImporterDonneesOLU",
	Param:        dateParam,
}

// Budget is the yearly training budget.
var Budget = schema.Spec{
	Name:        "budget",
	Description: "Import the training budget for a year",
	Fields: []schema.Field{
		text("ORGANISME FORMATION", "organisme_formation"),
		text("NOM FORMATION", "nom_formation"),
		text("DATES", "dates"),
		numeric("TARIF HT", "tarif_ht"),
		numeric("BUDGET", "budget"),
		numeric("SEMESTRE DE VALIDATION", "semestre_validation"),
		text("EMPLOYES", "employes"),
		text("Commentaires", "commentaires"),
	},
	StagingTable: "TempBudget",
	Procedure:    "sp_ImporterBudgetFormation",
	Param:        yearParam,
}

// Plan is the yearly training plan. TARIF HT and SESSIONS stay text.
var Plan = schema.Spec{
	Name:        "plan",
	Description: "Import the training plan for a year",
	Fields: []schema.Field{
		text("CATEGORIE/OBJECTIF", "categorie"),
		text("COLLABORATEUR", "collaborateur"),
		text("ID COLLABORATEUR", "id_collaborateur"),
		text("MANAGER", "manager"),
		text("DEPARTEMENT", "departement"),
		text("ORGANISME FORMATION", "organisme_formation"),
		text("TYPE FORMATION", "type_formation"),
		text("NOM FORMATION", "nom_formation"),
		numeric("PRIORITE", "priorite"),
		text("SESSIONS", "sessions"),
		numeric("DUREE", "duree"),
		text("TARIF HT", "tarif_ht"),
		numeric("BUDGET", "budget"),
		flag("OBLIGATOIRE OU NON", "obligatoire"),
		flag("VALIDEE", "validee"),
		text("Commentaires", "commentaires"),
	},
	StagingTable: "TempPlan",
	Procedure:    "sp_ImporterPlanFormation",
	Param:        yearParam,
}

// Recueil is the yearly needs collection.
var Recueil = schema.Spec{
	Name:        "recueil",
	Description: "Import the training needs collection for a year",
	Fields: []schema.Field{
		text("CATEGORIE/OBJECTIF", "categorie"),
		text("COLLABORATEUR", "collaborateur"),
		text("ID COLLABORATEUR", "id_collaborateur"),
		text("MANAGER", "manager"),
		text("DEPARTEMENT", "departement"),
		text("ORGANISME FORMATION", "organisme_formation"),
		text("TYPE FORMATION", "type_formation"),
		text("NOM FORMATION", "nom_formation"),
		numeric("PRIORITE", "priorite"),
		text("SESSIONS", "sessions"),
		numeric("DUREE", "duree"),
		numeric("TARIF HT", "tarif_ht"),
		text("Commentaires", "commentaires"),
	},
	StagingTable: "TempRecueil",
	Procedure:    "sp_ImporterRecueilBesoins",
	Param:        yearParam,
}

// Suivi is the training follow-up extract.
var Suivi = schema.Spec{
	Name:        "suivi",
	Description: "Import the training follow-up extract",
	Fields: []schema.Field{
		text("CATEGORIE", "categorie"),
		text("ID COLLABORATEUR", "id_collaborateur"),
		text("GENRE", "genre"),
		text("MANAGER", "manager"),
		text("DEPARTEMENT", "departement"),
		text("CONTRAT", "contrat"),
		text("ORGANISME FORMATION", "organisme_formation"),
		text("NOM FORMATION", "nom_formation"),
		date("DU", "date_du"),
		date("AU", "date_au"),
		numeric("DUREE", "duree"),
		numeric("TARIF HT", "tarif_ht"),
		text("Commentaires", "commentaires"),
	},
	StagingTable: "TempSuivi",
	Procedure:    "sp_ImporterDonneesSuiviFormation",
	Param:        dateParam,
}

var catalogue = map[string]schema.Spec{
	OLU.Name:     OLU,
	Budget.Name:  Budget,
	Plan.Name:    Plan,
	Recueil.Name: Recueil,
	Suivi.Name:   Suivi,
}

// Lookup returns the job named name.
func Lookup(name string) (schema.Spec, error) {
	s, ok := catalogue[name]
	if !ok {
		return schema.Spec{}, fmt.Errorf("unknown job %q (have %v)", name, Names())
	}
	return s, nil
}

// All returns every job, sorted by name.
func All() []schema.Spec {
	out := make([]schema.Spec, 0, len(catalogue))
	for _, n := range Names() {
		out = append(out, catalogue[n])
	}
	return out
}

// Names returns the job names, sorted.
func Names() []string {
	out := make([]string, 0, len(catalogue))
	for n := range catalogue {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
