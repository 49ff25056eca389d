package app

import (
	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// 会话 ID 可以放 Cookie，也可以放 Authorization: Bearer
func sessionID(c *gin.Context) string {
	if ck, err := c.Request.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionID(c)
		if sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized", "code": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), sid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session", "code": "unauthorized"})
			return
		}

		// 确认用户仍存在（只查一次），信息放进 Context 给后续 handler 用
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), sid)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized", "code": "unauthorized"})
			return
		}
		c.Set("userID", u.ID)
		c.Set("displayName", u.DisplayName)
		c.Set("sessionID", sid)

		c.Next()
	}
}

// OptionalAuth 有会话就带上身份，没有也放行。
// 入会走 key/token 授权，身份不是前置条件
func OptionalAuth(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionID(c)
		if sid == "" {
			c.Next()
			return
		}
		if as, err := appSess.Get(c.Request.Context(), sid); err == nil {
			if u, err := repo.FindUserByID(c.Request.Context(), as.UserID); err == nil {
				c.Set("userID", u.ID)
				c.Set("displayName", u.DisplayName)
				c.Set("sessionID", sid)
			}
		}
		c.Next()
	}
}

// CurrentUID 从 Context 取当前身份；没登录返回空串
func CurrentUID(c *gin.Context) string {
	v, ok := c.Get("userID")
	if !ok {
		return ""
	}
	uid, _ := v.(string)
	return uid
}
