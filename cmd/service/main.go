package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment-service/config"
	"fulfillment-service/internal/payments"
	"fulfillment-service/internal/producer"
	"fulfillment-service/internal/repository"
	"fulfillment-service/internal/service"
	transport "fulfillment-service/internal/transport/http"
	"fulfillment-service/pkg/database"
	"fulfillment-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("APP_ENV") != "production"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repo := repository.New(db)

	var events service.EventBus
	if len(cfg.KafkaBrokers) > 0 {
		p := producer.NewOrderEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		events = p
		log.Info("Kafka-продюсер инициализирован", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		log.Warn("KAFKA_BROKERS не задан, публикация событий отключена")
	}

	var verifier service.SignatureVerifier
	if cfg.RazorpaySecret != "" {
		verifier = payments.NewVerifier(cfg.RazorpaySecret)
	} else {
		log.Warn("RAZORPAY_SECRET не задан, подтверждение платежей отключено")
	}

	svc := service.NewFulfillmentService(repo, repo.Wallets, verifier, events, log)

	router := transport.Router(svc, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP-сервер запущен", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка HTTP-сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Получен сигнал завершения, останавливаем сервер...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	log.Info("Сервер остановлен")
}
