package db

import (
	"Gin_postgres_redis_meet_tool/models"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("open db: %v", err)
	}

	if err := Migrate(DB); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}
	logrus.Info("database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Meeting{},
		&models.Room{},
		&models.Invite{},
		&models.Participant{},
		&models.MeetingLog{},
	); err != nil {
		return err
	}

	// 同一房间同一身份最多一条 waiting
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_waiting_per_uid
	  ON %s (room_id, uid)
	  WHERE lobby_status = 'waiting';
	`, models.ParticipantTable, models.ParticipantTable)).Error; err != nil {
		return err
	}

	// used 永远不能超过 max_uses（兜底；兑换本身走条件更新）
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_used_within_max;
	  ALTER TABLE %s ADD CONSTRAINT %s_used_within_max CHECK (used <= max_uses);
	`, models.InviteTable, models.InviteTable, models.InviteTable, models.InviteTable)).Error; err != nil {
		return err
	}

	// 审计流水按会议顺序读取更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_meeting_at
	  ON %s (meeting_id, created_at);
	`, models.MeetingLogTable, models.MeetingLogTable)).Error; err != nil {
		return err
	}

	return nil
}
