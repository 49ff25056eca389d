package main

import (
	"Gin_postgres_redis_meet_tool/app"
	"Gin_postgres_redis_meet_tool/config"
	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/routes"
	"Gin_postgres_redis_meet_tool/token"
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	app.BootstrapDemoRoom(
		context.Background(),
		application.Config,
		db.NewRepo(application.DB),
		token.NewCodec(application.Config.SigningSecret),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	logrus.Infof("listening on :%s", port)
	_ = r.Run(":" + port)
}
