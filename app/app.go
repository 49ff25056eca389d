package app

import (
	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/session"
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config

	appSess *session.AppSessionStore
}

// Config 从环境变量读取
type Config struct {
	RedisAddr  string
	RedisPwd   string
	WebOrigin  string
	SessionTTL time.Duration

	// 邀请 token 的进程级签名密钥；换密钥 = 所有未兑换 token 作废
	SigningSecret string
	// 外部 IdP 签 id token 用的共享密钥
	IDPSecret string

	// 媒体服务的 API 凭据（token 格式是它的契约，服务本身是黑盒）
	MediaAPIKey    string
	MediaAPISecret string
	MediaTokenTTL  time.Duration

	// 套餐限制默认不启用（显式配置，不藏全局变量）
	EnforcePlanLimits bool
	Plan              PlanLimits

	BootstrapOwner string
}

// PlanLimits 启用 EnforcePlanLimits 时生效
type PlanLimits struct {
	MaxDurationMin  int
	MaxParticipants int
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew() *App {
	cfg := loadConfig()

	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("redis: %v", err)
	}

	if cfg.SigningSecret == "" {
		logrus.Fatal("SIGNING_SECRET is required")
	}
	if cfg.MediaAPIKey == "" || cfg.MediaAPISecret == "" {
		logrus.Fatal("MEDIA_API_KEY / MEDIA_API_SECRET are required")
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	getInt := func(k string, def int) int {
		if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
			return n
		}
		return def
	}

	ttl := 24 * time.Hour
	if sec, err := strconv.Atoi(get("SESSION_TTL_SECONDS", "")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}

	mediaTTL := 6 * time.Hour
	if sec, err := strconv.Atoi(get("MEDIA_TOKEN_TTL_SECONDS", "")); err == nil && sec > 0 {
		mediaTTL = time.Duration(sec) * time.Second
	}

	return Config{
		RedisAddr:  get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:   os.Getenv("REDIS_PASSWORD"),
		WebOrigin:  get("WEB_ORIGIN", "http://localhost:3000"),
		SessionTTL: ttl,

		SigningSecret: os.Getenv("SIGNING_SECRET"),
		IDPSecret:     os.Getenv("IDP_SECRET"),

		MediaAPIKey:    os.Getenv("MEDIA_API_KEY"),
		MediaAPISecret: os.Getenv("MEDIA_API_SECRET"),
		MediaTokenTTL:  mediaTTL,

		EnforcePlanLimits: strings.EqualFold(get("ENFORCE_PLAN_LIMITS", "false"), "true"),
		Plan: PlanLimits{
			MaxDurationMin:  getInt("PLAN_MAX_DURATION_MIN", 60),
			MaxParticipants: getInt("PLAN_MAX_PARTICIPANTS", 50),
		},

		BootstrapOwner: strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_OWNER"))),
	}
}
