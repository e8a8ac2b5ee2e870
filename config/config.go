package config

import (
	"os"
	"strings"

	"fulfillment-service/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB

	// Kafka опционален: пустой список брокеров отключает публикацию событий
	KafkaBrokers []string
	KafkaTopic   string

	// Секрет платёжного шлюза; пусто — подтверждение платежей отключено
	RazorpaySecret string
}

type DB struct {
	database.Config
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		KafkaBrokers:   splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     os.Getenv("KAFKA_TOPIC_ORDER_EVENTS"),
		RazorpaySecret: os.Getenv("RAZORPAY_SECRET"),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
