package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/wolfeidau/moontravel/internal/apierr"
	"github.com/wolfeidau/moontravel/internal/cookie"
	"github.com/wolfeidau/moontravel/internal/models"

	httpmiddleware "github.com/wolfeidau/moontravel/internal/http"
)

// DecisionObserver is notified of every gate decision, for metrics.
type DecisionObserver func(ctx context.Context, required models.Role, decision Decision)

// RequireRole creates an HTTP middleware that runs the gate against the
// session cookie before the wrapped handler. Authorized requests carry a
// Principal in their context.
func RequireRole(gate *Gate, required models.Role, observers ...DecisionObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := gate.Authorize(r.Context(), cookie.SessionID(r), required)
			if err != nil {
				httpmiddleware.WriteError(w, r, apierr.Store(err))
				return
			}

			for _, observe := range observers {
				observe(r.Context(), required, decision)
			}

			if !decision.Allowed() {
				hlog.FromRequest(r).Debug().
					Str("required_role", string(required)).
					Str("outcome", decision.Outcome.String()).
					Str("reason", decision.Reason).
					Msg("Authorization denied")

				httpmiddleware.WriteError(w, r, decision.Err())
				return
			}

			ctx := WithPrincipal(r.Context(), &Principal{
				UserID: decision.UserID,
				Role:   decision.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
