package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lracdim/trazer-backend/db"
	"github.com/lracdim/trazer-backend/internal/auth"
	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/lracdim/trazer-backend/internal/types"
)

type AuthenticatedUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	BadgeID string `json:"badge_id"`
}

// roleRank orders roles for RequireMinRole. Admin outranks supervisor
// outranks guard.
var roleRank = map[string]int{
	models.RoleGuard:      1,
	models.RoleSupervisor: 2,
	models.RoleAdmin:      3,
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		token, err := auth.VerifyJWT(tokenString)

		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		userID, ok := claims["user_id"].(string)

		if !ok || userID == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token claims"})
			return
		}

		var user models.User

		if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Role:    user.Role,
			BadgeID: user.BadgeID,
		})
		ctx.Next()
	}
}

// RequireRole allows only an exact role through.
func RequireRole(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok || user.Role != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		ctx.Next()
	}
}

// RequireMinRole allows the given role and anything above it.
func RequireMinRole(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok || roleRank[user.Role] < roleRank[role] {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}

		ctx.Next()
	}
}

func currentUser(ctx *gin.Context) (AuthenticatedUser, bool) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return AuthenticatedUser{}, false
	}

	user, ok := value.(AuthenticatedUser)

	return user, ok
}

func extractToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}

		return ""
	}

	// Browser dashboard clients carry the token in the auth cookie.
	if cookie, err := ctx.Cookie("token"); err == nil {
		return cookie
	}

	return ""
}
