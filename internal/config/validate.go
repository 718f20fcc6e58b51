package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything a caller
// should know before trusting the config.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Sync.Queries = trimList(out.Sync.Queries)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if strings.TrimSpace(out.Provider.BaseURL) == "" {
		res.addErr("provider.base_url is required")
	}
	if out.Provider.TimeoutSeconds <= 0 {
		res.addErr("provider.timeout_seconds must be > 0")
	}
	if out.Provider.RequestsPerSec <= 0 {
		res.addErr("provider.requests_per_sec must be > 0")
	}
	if out.Provider.Burst <= 0 {
		out.Provider.Burst = 1
	}

	if spec := strings.TrimSpace(out.Sync.Schedule); spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			res.addErr("sync.schedule is not a valid cron spec: %v", err)
		}
	}
	if len(out.Sync.Queries) == 0 {
		res.addWarn("sync.queries is empty; the default query will be used.")
	}
	if len(out.Sync.Queries) > 20 {
		res.addWarn("sync.queries has %d entries; each one is a provider call per cycle.", len(out.Sync.Queries))
	}

	return out, res
}
