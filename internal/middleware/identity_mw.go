package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sunnah_sayings/internal/identity"
	"sunnah_sayings/internal/logger"
	"sunnah_sayings/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	MsgUnauthorized = "unauthorized access"
	MsgForbidden    = "forbidden access"

	bearerPrefix = "Bearer "
)

// ErrForbidden is returned by a ClaimGuard that denies the request
var ErrForbidden = errors.New("forbidden")

// ClaimGuard is a check that runs after the identity has been verified.
// It receives the claim explicitly and can only be installed through
// VerifyIdentity, so it never runs without a verified identity.
// Returning ErrForbidden yields 403; any other error yields 500.
type ClaimGuard struct {
	Name  string
	Check func(ctx context.Context, claim *identity.Claim) error
}

type claimKey struct{}

// withClaim stores the verified claim on ctx
func withClaim(ctx context.Context, claim *identity.Claim) context.Context {
	return context.WithValue(ctx, claimKey{}, claim)
}

// ClaimFromContext returns the claim attached by VerifyIdentity
func ClaimFromContext(ctx context.Context) (*identity.Claim, bool) {
	claim, ok := ctx.Value(claimKey{}).(*identity.Claim)
	return claim, ok && claim != nil
}

// Claim is a convenience for handlers behind VerifyIdentity
func Claim(c *gin.Context) (*identity.Claim, bool) {
	return ClaimFromContext(c.Request.Context())
}

// VerifyIdentity authenticates the bearer token and then runs the given
// claim guards in order. The first rejection aborts the chain with a
// single response. Rejections are counted on m when it is not nil.
func VerifyIdentity(verifier identity.Verifier, log logger.Logger, m *metrics.Metrics, guards ...ClaimGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.GuardRejected("identity", "missing_credential")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": MsgUnauthorized})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		claim, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, identity.ErrProviderUnavailable) {
				reason = "provider_error"
			}
			m.GuardRejected("identity", reason)
			log.Debug("Identity verification failed", "path", c.FullPath(), "reason", reason, "error", err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": MsgForbidden})
			return
		}

		c.Request = c.Request.WithContext(withClaim(c.Request.Context(), claim))

		for _, g := range guards {
			if err := g.Check(c.Request.Context(), claim); err != nil {
				if errors.Is(err, ErrForbidden) {
					m.GuardRejected(g.Name, "denied")
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": MsgForbidden})
					return
				}
				m.GuardRejected(g.Name, "error")
				log.Error("Guard failed", "guard", g.Name, "path", c.FullPath(), "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to authorize request"})
				return
			}
		}

		c.Next()
	}
}
