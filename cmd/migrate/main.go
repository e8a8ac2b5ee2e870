package main

import (
	"context"
	"time"

	"fulfillment-service/config"
	"fulfillment-service/internal/migrate"
	"fulfillment-service/pkg/database"
	"fulfillment-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(true); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDBForMigration(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrate.MigrateFulfillmentDB(ctx, db, log, migrate.DefaultMigrateOptions()); err != nil {
		log.Fatal("Миграция завершилась с ошибкой", zap.Error(err))
	}
	log.Info("Миграция успешно применена")
}
