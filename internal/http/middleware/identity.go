package middleware

import (
	"github.com/gin-gonic/gin"

	"mealrelay.org/app/internal/shared/apperr"
)

// Identity issuance lives outside this service. The auth proxy in front of us
// validates the session and injects the actor; these headers are trusted and
// must never be reachable from the public network directly.
const (
	HeaderActorEmail = "X-Actor-Email"
	HeaderActorRole  = "X-Actor-Role"

	CtxKeyActor = "actor"
)

const (
	RoleRecipient  = "Recipient"
	RoleRestaurant = "Business"
	RoleAdmin      = "Admin"
)

type Actor struct {
	Email string
	Role  string
}

// Identity requires an authenticated actor on every request it guards.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(HeaderActorEmail)
		role := c.GetHeader(HeaderActorRole)
		if email == "" || role == "" {
			Fail(c, apperr.UnauthorizedErr("Sign in required."))
			return
		}

		c.Set(CtxKeyActor, Actor{Email: email, Role: role})
		c.Next()
	}
}

func CurrentActor(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(CtxKeyActor)
	if !ok {
		return Actor{}, false
	}
	a, ok := v.(Actor)
	return a, ok
}

// RequireRole gates a route group to the given roles. Admins pass everywhere.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		a, ok := CurrentActor(c)
		if !ok {
			Fail(c, apperr.UnauthorizedErr("Sign in required."))
			return
		}
		if a.Role == RoleAdmin {
			c.Next()
			return
		}
		if _, ok := allowed[a.Role]; !ok {
			Fail(c, apperr.ForbiddenErr("Not allowed."))
			return
		}
		c.Next()
	}
}
