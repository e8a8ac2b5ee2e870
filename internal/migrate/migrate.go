package migrate

import (
	"context"

	"fulfillment-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, uuid-ossp
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы
	CreateFKsViaSQL        bool // FK через SQL (поверх GORM-constraint)
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateFulfillmentDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных фулфилмента")

	// Расширения
	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			log.Error("Не удалось включить расширение uuid-ossp", zap.Error(err))
			return err
		}
	}

	// Таблицы
	log.Info("Создание таблиц")
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.DeliveryPartner{},
		&models.Wallet{},
		&models.WalletTransaction{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}

	// Триггер updated_at для orders
	if opt.CreateUpdatedAtTrigger {
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггер updated_at", zap.Error(err))
			return err
		}
	}

	// CHECK-constraint
	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")

		// Статусы (так как храним TEXT)
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_store_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_store_status_allowed
  CHECK (store_status IN ('STORE_STATUS_PENDING','STORE_STATUS_PREPARING','STORE_STATUS_READY_FOR_PICKUP','STORE_STATUS_COLLECTED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для store_status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_delivery_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_delivery_status_allowed
  CHECK (delivery_status IN ('','DELIVERY_STATUS_ASSIGNED','DELIVERY_STATUS_COLLECTED','DELIVERY_STATUS_DELIVERED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для delivery_status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_payment_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_payment_status_allowed
  CHECK (payment_status IN ('PAYMENT_STATUS_PENDING','PAYMENT_STATUS_PAID','PAYMENT_STATUS_FAILED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для payment_status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_return_status_allowed;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_return_status_allowed
  CHECK (return_status IN ('RETURN_STATUS_NOT_REQUESTED','RETURN_STATUS_REQUESTED','RETURN_STATUS_COMPLETED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для return_status", zap.Error(err))
			return err
		}

		// Количество > 0, цены неотрицательные
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для order_items.quantity", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_price_non_negative;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_price_non_negative
  CHECK (price_cents >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для order_items.price_cents", zap.Error(err))
			return err
		}

		// OTP — шесть знаков, если задан
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_otp_range;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_otp_range
  CHECK (
    (collection_otp IS NULL OR collection_otp BETWEEN 100000 AND 999999) AND
    (delivery_otp   IS NULL OR delivery_otp   BETWEEN 100000 AND 999999)
  );
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для OTP", zap.Error(err))
			return err
		}

		log.Info("CHECK-ограничения успешно созданы")
	}

	// Индексы
	if opt.CreateIndexes {
		log.Info("Создание индексов")

		// Выборки витрины магазина: заказы с позициями магазина по дате
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_order_items_store_order
ON order_items (store_id, order_id);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_order_items_store_order", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_store_status_date
ON orders (store_id, store_status, order_date DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_orders_store_status_date", zap.Error(err))
			return err
		}
	}

	// Внешние ключи
	if opt.CreateFKsViaSQL {
		// order_items.order_id -> orders.id (CASCADE)
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK order_items.order_id -> orders.id", zap.Error(err))
			return err
		}
	}

	log.Info("Миграция базы данных фулфилмента успешно завершена")
	return nil
}
