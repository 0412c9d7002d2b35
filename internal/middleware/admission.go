package middleware

import (
	"net/http"
	"time"

	"github.com/stockroom-labs/stockroom/internal/admission"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

// Admission gates every inbound request through the admission controller
// before any handler logic runs. Window exhaustion answers 429, an active
// lockout answers 403; both are terminal, there is no retry inside the
// server.
func Admission(controller *admission.Controller, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := pkghttp.ExtractClientIP(r, ipConfig)

			switch controller.Check(clientIP, time.Now()) {
			case admission.VerdictRateLimited:
				pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
				return
			case admission.VerdictBlocked:
				pkghttp.WriteForbidden(w, "Temporarily blocked")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
