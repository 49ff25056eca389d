package controllers

import (
	"errors"
	"net/http"
	"time"

	"Gin_postgres_redis_meet_tool/app"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 身份由外部 IdP 签发（HS256 共享密钥）。这里只验签换会话，
// 不做任何登录凭证的签发
type AuthController struct{ *Srv }

func GetAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type idClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

func (ac *AuthController) verifyIDToken(raw string) (*idClaims, error) {
	claims := &idClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(ac.Cfg.IDPSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("invalid identity token")
	}
	return claims, nil
}

// POST /auth/session
func (ac *AuthController) CreateSession(c *gin.Context) {
	var in struct {
		IDToken string `json:"idToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		return
	}

	claims, err := ac.verifyIDToken(in.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "invalid identity token", "code": "unauthorized"})
		return
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	u, err := ac.Repo.FindOrCreateUser(c.Request.Context(), uuid.NewString(), claims.Subject, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, u.DisplayName); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if v, ok := c.Get("sessionID"); ok {
		sid, _ := v.(string)
		_ = ac.AppSess.Delete(c.Request.Context(), sid)
	}
	ac.setAppCookie(c.Writer, "", -time.Second) // MaxAge -1，删除 Cookie
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /auth/logout-all
// 全端下线：撤销该用户的所有会话
func (ac *AuthController) LogoutAll(c *gin.Context) {
	v, _ := c.Get("userID")
	uid, _ := v.(string)
	if err := ac.AppSess.RevokeAllForUser(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	ac.setAppCookie(c.Writer, "", -time.Second)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /auth/whoami
func (ac *AuthController) WhoAmI(c *gin.Context) {
	v, _ := c.Get("userID")
	uid, _ := v.(string)
	n, _ := c.Get("displayName")
	name, _ := n.(string)
	c.JSON(http.StatusOK, app.H{"userID": uid, "displayName": name})
}
