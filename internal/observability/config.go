package observability

import (
	"fmt"
	"strconv"
)

const (
	EnvMetrics = "BETAPLAN_ENABLE_METRICS"
	EnvPprof   = "BETAPLAN_ENABLE_PPROF"
)

// Config captures opt-in observability toggles that wire into the service.
type Config struct {
	// EnableMetrics mounts the Prometheus exposition handler on /metrics.
	EnableMetrics bool
	// EnablePprof mounts net/http/pprof under /debug/pprof/.
	EnablePprof bool
}

// Default enables metrics and leaves profiling off.
func Default() Config {
	return Config{EnableMetrics: true}
}

// FromEnv overlays the toggles set in the environment on base. lookup follows
// os.LookupEnv. Unparseable values are reported and leave the field unchanged.
func FromEnv(base Config, lookup func(string) (string, bool)) (Config, []error) {
	var errs []error
	apply := func(key string, dst *bool) {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s=%q: %w", key, raw, err))
			return
		}
		*dst = value
	}
	apply(EnvMetrics, &base.EnableMetrics)
	apply(EnvPprof, &base.EnablePprof)
	return base, errs
}
