// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"Gin_postgres_redis_meet_tool/app"
	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/media"
	"Gin_postgres_redis_meet_tool/session"
	"Gin_postgres_redis_meet_tool/token"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Srv struct {
	Repo    *db.Repo
	AppSess *session.AppSessionStore
	Codec   token.Codec
	Media   *media.Issuer
	Cfg     app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:    db.NewRepo(a.DB),
		AppSess: a.AppSessions(),
		Codec:   token.NewCodec(a.Config.SigningSecret),
		Media:   media.NewIssuer(a.Config.MediaAPIKey, a.Config.MediaAPISecret, a.Config.MediaTokenTTL),
		Cfg:     a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.Cfg.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID, displayName string) error {
	if err := s.Repo.TouchUserLogin(ctx, userID); err != nil {
		logrus.Warnf("touch login for %s: %v", userID, err)
	}
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID, displayName); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// audit 追加审计流水；失败只告警，绝不影响主操作的结果
func (s *Srv) audit(ctx context.Context, meetingID, typ string, byUID *string, meta map[string]interface{}) {
	if err := s.Repo.AppendMeetingLog(ctx, meetingID, typ, byUID, meta); err != nil {
		logrus.Warnf("audit log %s for meeting %s: %v", typ, meetingID, err)
	}
}

func optionalUID(c *app.Ctx) *string {
	if uid := app.CurrentUID(c); uid != "" {
		return &uid
	}
	return nil
}
