package middleware

import (
	"coursemaster/internal/gateway"
	"coursemaster/internal/model"
	"coursemaster/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// authenticate 解析令牌；成功时把 claims 放进 gin 上下文，令牌放进请求 context 供远程网关转发
func authenticate(c *gin.Context, secret string) bool {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return false
	}
	claims, err := util.ParseJWT(tokenString, secret)
	if err != nil {
		return false
	}
	c.Set(util.ContextUserKey, claims)
	c.Request = c.Request.WithContext(gateway.WithToken(c.Request.Context(), tokenString))
	return true
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, secret) {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// TryAuth 令牌可选，匿名访问照常放行
func TryAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, secret)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
