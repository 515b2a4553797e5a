package middlewares

import (
	"strings"

	"p2h.app/configs/configslog"
	"p2h.app/pkg/apiresponse"
	"p2h.app/pkg/sessiontoken"
	"p2h.app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionCookie carries the token for browser clients.
const SessionCookie = "p2h_session"

// Locals keys set by AuthMiddleware.
const (
	LocalUserID    = "userID"
	LocalRole      = "role"
	LocalUserName  = "userName"
	LocalSubjectID = "subjectID"
)

// AuthMiddleware verifies the session token from the Authorization header or
// the session cookie and exposes its claims through Locals.
func AuthMiddleware(issuer *sessiontoken.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(SessionCookie)
		}
		if token == "" {
			return apiresponse.Denied(c, fiber.StatusUnauthorized, "authentication required")
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			configslog.Log.Debug("Session token rejected", zap.String("path", c.Path()), zap.Error(err))
			return apiresponse.Denied(c, fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalUserName, claims.Name)
		if claims.SubjectID != nil {
			c.Locals(LocalSubjectID, *claims.SubjectID)
		}
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireRole admits only callers whose token carries one of roles. It must
// run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if _, ok := allowed[role]; !ok {
			configslog.Log.Info("Role not allowed",
				zap.String("path", c.Path()),
				zap.String("role", role),
			)
			return apiresponse.Denied(c, fiber.StatusForbidden, "access denied for this role")
		}
		return c.Next()
	}
}

// CurrentActor rebuilds the authenticated caller from Locals.
func CurrentActor(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := c.Locals(LocalUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return services.Actor{}, false
	}
	actor := services.Actor{UserID: userID}
	actor.Role, _ = c.Locals(LocalRole).(string)
	actor.Name, _ = c.Locals(LocalUserName).(string)
	if subject, ok := c.Locals(LocalSubjectID).(uuid.UUID); ok {
		actor.SubjectID = &subject
	}
	return actor, true
}
