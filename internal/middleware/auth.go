package middleware

import (
	"flightprep_backend/internal/config"
	"flightprep_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// ActivityRecorder 会话层的活动回调
type ActivityRecorder interface {
	RecordActivity(userID uint) error
}

// ActivityMiddleware 把任意已认证请求视为一次用户活动，刷新活跃会话的专注度计时。
// 没有活跃会话时静默忽略，不阻塞主流程。
func ActivityMiddleware(recorder ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil {
			_ = recorder.RecordActivity(claims.UserID)
		}
		c.Next()
	}
}
