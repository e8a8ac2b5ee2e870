package service

import (
	"context"
	"time"

	"fulfillment-service/internal/models"

	"github.com/google/uuid"
)

type StoreStatusChangedEvent struct {
	OrderID          uuid.UUID          `json:"order_id"`
	StoreID          uuid.UUID          `json:"store_id"`
	Previous         models.StoreStatus `json:"previous"`
	New              models.StoreStatus `json:"new"`
	StoreAmountCents int64              `json:"store_amount_cents"`
	ChangedAt        time.Time          `json:"changed_at"`
}

type ReturnCompletedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	ItemID        uuid.UUID `json:"item_id"`
	UserID        uuid.UUID `json:"user_id"`
	AmountCents   int64     `json:"amount_cents"`
	RefundMessage string    `json:"refund_message"`
	CompletedAt   time.Time `json:"completed_at"`
}

// RefundInconsistencyEvent: статус возврата уже Completed, а кредит кошелька
// не прошёл. Откат не делаем — это сигнал для ручной/асинхронной сверки.
type RefundInconsistencyEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	ItemID      uuid.UUID `json:"item_id"`
	UserID      uuid.UUID `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type EventBus interface {
	PublishStoreStatusChanged(ctx context.Context, e StoreStatusChangedEvent) error
	PublishReturnCompleted(ctx context.Context, e ReturnCompletedEvent) error
	PublishRefundInconsistency(ctx context.Context, e RefundInconsistencyEvent) error
}
