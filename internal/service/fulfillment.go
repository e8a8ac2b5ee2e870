package service

import (
	"context"
	"time"

	"fulfillment-service/internal/models"

	"github.com/google/uuid"
)

// StatusChange — полезная нагрузка уведомления о переходе магазинного статуса
type StatusChange struct {
	Previous         models.StoreStatus
	New              models.StoreStatus
	StoreAmountCents int64
	StoreID          uuid.UUID
}

type AssignPartnerInput struct {
	OrderID     uuid.UUID
	PartnerID   uuid.UUID
	PartnerName string // пусто — имя берём из справочника партнёров
}

type ConfirmPaymentInput struct {
	OrderID        uuid.UUID
	GatewayOrderID string
	PaymentID      string
	Signature      string
	PaymentMethod  string
}

type StoreOrdersFilter struct {
	PaymentStatus *models.PaymentStatus
	PaymentMethod *string
	From          *time.Time
	To            *time.Time
	SortDesc      bool
	Limit         int
	Offset        int
}

// Wallet — внешний приёмник возвратов (баланс покупателя).
// Вызов не идемпотентен: одно завершение возврата = максимум один вызов.
type Wallet interface {
	Credit(ctx context.Context, userID uuid.UUID, amountCents int64) (bool, error)
}

// SignatureVerifier — контракт доверия платёжному событию шлюза
type SignatureVerifier interface {
	Verify(gatewayOrderID, paymentID, signature string) bool
}

type FulfillmentService interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListStoreOrders(ctx context.Context, storeID uuid.UUID, f StoreOrdersFilter) ([]*models.Order, int64, error)

	StoreStatusValues() []models.StoreStatus
	CurrentStoreStatus(ctx context.Context, orderID uuid.UUID) (models.StoreStatus, error)
	AdvanceStoreStatus(ctx context.Context, orderID uuid.UUID, presentedOTP *int32) (*StatusChange, error)

	AssignPartner(ctx context.Context, in AssignPartnerInput) error
	UpdateDeliveryStatus(ctx context.Context, orderID uuid.UUID, status models.DeliveryStatus) (bool, error)

	RequestReturn(ctx context.Context, orderID, productID, variantID uuid.UUID) (bool, error)
	CompleteReturn(ctx context.Context, orderID, itemID, storeID uuid.UUID) (bool, error)
	CancelItem(ctx context.Context, orderID, itemID uuid.UUID) (bool, error)

	ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (bool, error)
}
