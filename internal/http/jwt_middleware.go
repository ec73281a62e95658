package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskflow/internal/service"
)

const authUserIDKey = "auth_user_id"

// JWTAuthMiddleware extrae el bearer token, lo verifica y deja el id del
// usuario en el contexto. Toda falla responde 401 con un mensaje genérico;
// el motivo concreto (expirado, malformado, firma) solo va al log.
func JWTAuthMiddleware(logger *zap.Logger, jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.Parse(token)
		if err != nil {
			if logger != nil {
				logger.Info("token rejected",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
			c.Abort()
			return
		}

		c.Set(authUserIDKey, claims.UserID)
		c.Next()
	}
}

// GetAuthUserID obtiene el id de usuario resuelto por el middleware.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
