package config

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv 读取 .env（没有就用进程环境变量，不报错）
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using process environment")
	}
}
