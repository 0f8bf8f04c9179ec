package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/services"
	"github.com/edupulse/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware parses the bearer token against the identity provider and
// stores the caller's identity in the request context. It also mirrors the
// subject into the local user table so profile-driven filters stay current.
func AuthMiddleware(client *casdoorsdk.Client, userService services.UserService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing or malformed Authorization header",
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := client.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}

		user := userFromClaims(claims)
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Account is disabled",
			})
			return
		}

		if _, err := userService.Sync(c.Request.Context(), user); err != nil {
			// Stale profile data is tolerable; a failed sync is not fatal
			logger.Warn("User sync failed", "user_id", user.ID, "error", err)
		}

		c.Set("user_id", user.ID)
		c.Set("user_role", string(user.Role))
		c.Set("user_class", user.Class)
		c.Set("user_board", user.Board)

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set. It runs
// after AuthMiddleware and trusts its context values.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.UserRole(c.GetString("user_role"))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient role",
		})
	}
}

// userFromClaims maps identity provider claims onto the local user model.
// Role, class and board travel in the user's property bag.
func userFromClaims(claims *casdoorsdk.Claims) *models.User {
	role := models.UserRole(claims.User.Properties["role"])
	if claims.User.IsAdmin {
		role = models.RoleAdmin
	}
	switch role {
	case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
	default:
		role = models.RoleStudent
	}

	return &models.User{
		ID:       claims.User.Id,
		FullName: claims.User.DisplayName,
		Email:    claims.User.Email,
		Role:     role,
		Class:    claims.User.Properties["class"],
		Board:    claims.User.Properties["board"],
		IsActive: !claims.User.IsForbidden,
	}
}
