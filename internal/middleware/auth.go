package middleware

import (
	"net/http"
	"strings"

	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 写入 gin.Context 的键
const (
	CtxAgencyID = "agencyID"
	CtxActorID  = "actorID"
)

// AuthMiddleware 校验 JWT，并在 context 里放入当前 agency 和操作人。
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) 请求头 Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL 查询参数 ?token=xxx（用于导出下载等无法自定义 Header 的场景）
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxAgencyID, claims.AgencyID)
		c.Set(CtxActorID, claims.ActorID)
		c.Next()
	}
}

// AgencyID 返回鉴权中间件解析出的 agency
func AgencyID(c *gin.Context) string {
	return c.GetString(CtxAgencyID)
}

// ActorID 返回当前操作人
func ActorID(c *gin.Context) string {
	return c.GetString(CtxActorID)
}
