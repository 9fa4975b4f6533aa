package httptransport

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MianAhsan577/waapi-server/internal/domain/auth"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
)

// identityKey is where the auth middleware stores the verified identity.
const identityKey = "auth.identity"

// TokenVerifier validates a session token and returns the identity it
// carries.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// NewAuthMiddleware gates a route group behind bearer-token auth. The token
// is read from the Authorization header, or from the token query parameter
// as a fallback for EventSource clients that cannot set headers.
func NewAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			RespondAbort(c, errors.New(errors.KindAuth, "http.auth", "authorization token required"))
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			RespondAbort(c, err)
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity the auth middleware attached, if any.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}
