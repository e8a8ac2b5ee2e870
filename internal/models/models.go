package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы — строковые типы, допустимые значения закреплены CHECK-ами в миграции
type StoreStatus string

const (
	StoreStatusPending        StoreStatus = "STORE_STATUS_PENDING"
	StoreStatusPreparing      StoreStatus = "STORE_STATUS_PREPARING"
	StoreStatusReadyForPickup StoreStatus = "STORE_STATUS_READY_FOR_PICKUP"
	StoreStatusCollected      StoreStatus = "STORE_STATUS_COLLECTED"
)

type DeliveryStatus string

const (
	// Пустая строка = партнёр ещё не назначен
	DeliveryStatusUnassigned DeliveryStatus = ""
	DeliveryStatusAssigned   DeliveryStatus = "DELIVERY_STATUS_ASSIGNED"
	DeliveryStatusCollected  DeliveryStatus = "DELIVERY_STATUS_COLLECTED"
	DeliveryStatusDelivered  DeliveryStatus = "DELIVERY_STATUS_DELIVERED"
)

type ReturnStatus string

const (
	ReturnStatusNotRequested ReturnStatus = "RETURN_STATUS_NOT_REQUESTED"
	ReturnStatusRequested    ReturnStatus = "RETURN_STATUS_REQUESTED"
	ReturnStatusCompleted    ReturnStatus = "RETURN_STATUS_COMPLETED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PAYMENT_STATUS_PENDING"
	PaymentStatusPaid    PaymentStatus = "PAYMENT_STATUS_PAID"
	PaymentStatusFailed  PaymentStatus = "PAYMENT_STATUS_FAILED"
)

type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Сумма заказа уменьшается по мере успешных возвратов
	TotalAmountCents int64 `gorm:"not null;default:0"`

	// Купон: применён, если coupon_code не NULL
	CouponCode          *string `gorm:"type:text"`
	CouponMinOrderCents *int64

	StoreID          uuid.UUID   `gorm:"type:uuid;not null;index"`
	StoreAmountCents int64       `gorm:"not null;default:0"`
	StoreStatus      StoreStatus `gorm:"type:text;not null;default:'STORE_STATUS_PENDING';index"`

	DeliveryPartnerID *uuid.UUID     `gorm:"type:uuid;index"`
	PartnerName       *string        `gorm:"type:text"`
	DeliveryStatus    DeliveryStatus `gorm:"type:text;not null;default:''"`
	CollectionOTP     *int32
	DeliveryOTP       *int32

	PaymentStatus PaymentStatus `gorm:"type:text;not null;default:'PAYMENT_STATUS_PENDING';index"`
	PaymentMethod string        `gorm:"type:text;not null;default:''"`
	PaymentID     *string       `gorm:"type:text"`

	OrderDate time.Time `gorm:"not null;default:now();index"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"` // каскад на позиции
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID `gorm:"type:uuid;not null"`

	PriceCents int64     `gorm:"not null"`
	Quantity   uint32    `gorm:"type:int;not null"`
	StoreID    uuid.UUID `gorm:"type:uuid;not null;index"`

	// Монотонные поля: false→true и NotRequested→Requested→Completed, назад нельзя
	IsCancelled  bool         `gorm:"not null;default:false"`
	ReturnStatus ReturnStatus `gorm:"type:text;not null;default:'RETURN_STATUS_NOT_REQUESTED'"`

	// Пишется ровно один раз при завершении возврата
	RefundMessage *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

type DeliveryPartner struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName string    `gorm:"type:text;not null"`
	LastName  string    `gorm:"type:text;not null"`
	Phone     string    `gorm:"type:text;not null;default:''"`
	IsActive  bool      `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (DeliveryPartner) TableName() string { return "delivery_partners" }

// Wallet — внутренний баланс покупателя, приёмник возвратов
type Wallet struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BalanceCents int64     `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Wallet) TableName() string { return "wallets" }

type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

type WalletTransaction struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index:ix_wallet_tx_user_date,priority:1"`
	AmountCents int64             `gorm:"not null"`
	Type        TransactionType   `gorm:"type:text;not null"`
	Status      TransactionStatus `gorm:"type:text;not null"`

	Date time.Time `gorm:"not null;default:now();index:ix_wallet_tx_user_date,priority:2,sort:desc"`
}

func (WalletTransaction) TableName() string { return "wallet_transactions" }
