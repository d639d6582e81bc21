package main

import (
	"github.com/Ratebah20/HR-plateform-learning/internal/logging"
	"github.com/Ratebah20/HR-plateform-learning/internal/metrics"
	"github.com/Ratebah20/HR-plateform-learning/internal/metrics/datadog"
	"github.com/Ratebah20/HR-plateform-learning/internal/metrics/prompush"
)

const defaultPushgatewayURL = "http://localhost:9091"

// installMetrics picks the backend (flag, then env, then none) and returns
// the function that flushes it at exit. A backend that cannot start leaves
// metrics disabled.
func installMetrics(job string, opts options, getenv func(string) string) func() {
	nop := func() {}

	name := opts.metricsBackend
	if name == "" {
		name = getenv("METRICS_BACKEND")
	}

	var b metrics.Backend
	switch name {
	case "", "none":
		logging.Debugf("metrics: disabled")
		return nop

	case "pushgateway":
		url := firstNonEmpty(opts.pushgatewayURL, getenv("PUSHGATEWAY_URL"), defaultPushgatewayURL)
		pb, err := prompush.NewBackend(job, url)
		if err != nil {
			logging.Warnf("metrics: pushgateway: %v; metrics disabled", err)
			return nop
		}
		logging.Debugf("metrics: pushgateway url=%s import=%s", url, job)
		b = pb

	case "datadog":
		addr := firstNonEmpty(opts.dogstatsdAddr, getenv("DOGSTATSD_ADDR"))
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "platform_hr.",
			GlobalTags: []string{"import:" + job},
		})
		if err != nil {
			logging.Warnf("metrics: %v; metrics disabled", err)
			return nop
		}
		logging.Debugf("metrics: dogstatsd addr=%s", addr)
		b = db

	default:
		logging.Warnf("metrics: unknown backend %q; metrics disabled", name)
		return nop
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			logging.Warnf("metrics: flush: %v", err)
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
