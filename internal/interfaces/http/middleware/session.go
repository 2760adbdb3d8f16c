// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/domain/cart"
)

const sessionIDKey = "session_id"

// Session makes sure every request carries an anonymous session id in a
// cookie. The id keys the shopper's cart and is refreshed on each request so
// the cookie lives as long as the cart.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.CartTTL / time.Second)

	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, maxAge, "/", "", cfg.CookieSecure, true)
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// ShopperFromContext builds the cart identity for the request: the session
// id plus the signed-in user, if any
func ShopperFromContext(c *gin.Context) cart.Shopper {
	shopper := cart.Shopper{SessionID: c.GetString(sessionIDKey)}
	if userID, ok := GetUserIDFromContext(c); ok {
		shopper.UserID = &userID
	}
	return shopper
}
