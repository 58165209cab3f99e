package endpoints

import (
	"fmt"
	"net/http"

	"github.com/EasterCompany/dex-runway-service/config"
	"github.com/EasterCompany/dex-runway-service/utils"
)

// CacheStatus reports whether the campaign cache is reachable.
type CacheStatus interface {
	IsCacheOnline() bool
}

// ServiceHandler provides a status report for the service.
func ServiceHandler(cfg *config.Config, cache CacheStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := utils.GetVersion()

		// Shortened string for the report.
		displayVersion := utils.Version{
			Str: fmt.Sprintf("%s.%s.%s", version.Obj.Major, version.Obj.Minor, version.Obj.Patch),
			Obj: version.Obj,
		}

		report := utils.ServiceReport{
			Version: displayVersion,
			Health:  utils.GetHealth(),
			Metrics: map[string]interface{}{
				"uptime_seconds": utils.GetDefaultTracker().GetUptimeSeconds(),
				"system":         utils.GetMetrics(),
			},
		}
		if cache != nil {
			report.Metrics["cache_online"] = cache.IsCacheOnline()
		}
		if cfg != nil {
			report.Config = cfg.GetSanitized()
		}

		status := http.StatusOK
		if report.Health.Status != utils.HealthOK {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	}
}
