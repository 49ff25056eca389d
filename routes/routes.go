package routes

import (
	"Gin_postgres_redis_meet_tool/app"
	"Gin_postgres_redis_meet_tool/controllers"
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	ac := controllers.GetAuthController(s)
	mc := controllers.GetMeetingController(s)
	rc := controllers.GetRoomController(s)
	ic := controllers.GetInviteController(s)
	lc := controllers.GetLobbyController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	optMW := app.OptionalAuth(s.AppSess, s.Repo)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 身份（外部 IdP 的 token 换会话）
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/session", ac.CreateSession)
		auth.POST("/logout", authMW, ac.Logout)
		auth.POST("/logout-all", authMW, ac.LogoutAll)
		auth.GET("/whoami", authMW, seenMW, ac.WhoAmI)
	}

	// ------------------------------
	// 预约会议：join/end 走 key 授权，身份可有可无
	// ------------------------------
	meetings := r.Group("/api/meetings")
	{
		meetings.POST("", authMW, seenMW, mc.CreateMeeting)
		meetings.GET("/:id", optMW, mc.GetMeeting)
		meetings.POST("/:id/join", optMW, mc.Join)
		meetings.POST("/:id/end", optMW, mc.End)
		meetings.POST("/:id/cancel", authMW, mc.Cancel)
		meetings.GET("/:id/log", authMW, mc.ListLog)
	}

	// ------------------------------
	// 临时房间 + 等候室（都要登录态）
	// ------------------------------
	rooms := r.Group("/api/rooms", authMW, seenMW)
	{
		rooms.POST("", rc.CreateRoom)
		rooms.GET("/:id/guard", rc.Guard)
		rooms.POST("/:id/join", rc.Join)
		rooms.POST("/:id/lock", rc.Lock)
		rooms.POST("/:id/unlock", rc.Unlock)
		rooms.POST("/:id/end", rc.End)

		rooms.POST("/:id/invites", ic.CreateInvite)
		rooms.GET("/:id/invites", ic.ListByRoom)

		rooms.GET("/:id/lobby", lc.ListWaiting)
		rooms.POST("/:id/lobby/admit-all", lc.AdmitAll)
		rooms.POST("/:id/lobby/:uid/admit", lc.Admit)
		rooms.POST("/:id/lobby/:uid/deny", lc.Deny)
	}

	// ------------------------------
	// 邀请兑换/撤销
	// ------------------------------
	invites := r.Group("/api/invites", authMW, seenMW)
	{
		invites.POST("/redeem", ic.Redeem)
		invites.POST("/:id/revoke", ic.Revoke)
	}
}
