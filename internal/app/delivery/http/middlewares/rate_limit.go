package middlewares

import (
	"net/http"
	"strconv"

	"labtrace-service/internal/app/services/shared/ratelimiter"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"
)

const labIngestLimiterGroup = "lab-ingest"

// LabPartnerRateLimit throttles webhook deliveries per sending partner with a
// fixed window. Requests without a partner header share one bucket.
func (m *Middlewares) LabPartnerRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partner := r.Header.Get(constvars.HeaderLabPartner)
		if partner == "" {
			partner = "unknown"
		}

		out, err := m.ResourceLimiter.ApplyResourceLimiter(r.Context(), &ratelimiter.ApplyResourceLimiterInput{
			ResourceName:      partner,
			LimiterGroupName:  labIngestLimiterGroup,
			WindowDurationSec: m.InternalConfig.Lab.PartnerWindowSeconds,
			MaxQuota:          m.InternalConfig.Lab.PartnerMaxPerWindow,
		})
		if err != nil {
			// Redis trouble must not drop lab deliveries.
			next.ServeHTTP(w, r)
			return
		}
		if !out.Allowed {
			w.Header().Set(constvars.HeaderRetryAfter, strconv.Itoa(out.RetryAfterSecs))
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTooManyRequests(nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}
