package repository

import (
	"context"
	"errors"
	"time"

	"fulfillment-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreOrderFilter struct {
	PaymentStatus *models.PaymentStatus
	PaymentMethod *string
	From          *time.Time
	To            *time.Time
	SortDesc      bool
	Limit         int
	Offset        int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.OrderItem, error)
	GetStoreStatus(ctx context.Context, id uuid.UUID) (*models.StoreStatus, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, f StoreOrderFilter) ([]*models.Order, int64, error)

	// Каждый переход — одиночный условный UPDATE; false = guard не совпал
	UpdateStoreStatusGuard(ctx context.Context, id uuid.UUID, from, to models.StoreStatus) (bool, error)
	AssignPartner(ctx context.Context, id, partnerID uuid.UUID, partnerName string, collectionOTP, deliveryOTP int32) (bool, error)
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) (bool, error)
	RequestReturnGuard(ctx context.Context, orderID, productID, variantID uuid.UUID) (bool, error)
	CompleteReturnGuard(ctx context.Context, orderID, itemID, storeID uuid.UUID, refundMessage string, deductCents int64) (bool, error)
	CancelItemGuard(ctx context.Context, orderID, itemID uuid.UUID) (bool, error)
	MarkPaymentPaidGuard(ctx context.Context, id uuid.UUID, paymentID, method string) (bool, error)

	WithTx(ctx context.Context, fn func(txRepo OrderRepo) error) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.OrderItem, error) {
	var it models.OrderItem
	err := r.db.WithContext(ctx).First(&it, "id = ? AND order_id = ?", itemID, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

func (r *orderRepo) GetStoreStatus(ctx context.Context, id uuid.UUID) (*models.StoreStatus, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Select("store_status").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord.StoreStatus, nil
}

func (r *orderRepo) ListByStore(ctx context.Context, storeID uuid.UUID, f StoreOrderFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.store_id = ?)", storeID)

	if f.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *f.PaymentStatus)
	}
	if f.PaymentMethod != nil {
		q = q.Where("payment_method = ?", *f.PaymentMethod)
	}
	if f.From != nil {
		q = q.Where("order_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("order_date <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	dir := "order_date ASC"
	if f.SortDesc {
		dir = "order_date DESC"
	}

	var list []*models.Order
	err := q.Order(dir).Limit(f.Limit).Offset(f.Offset).
		Preload("Items", "store_id = ?", storeID). // витрине магазина видны только его позиции
		Find(&list).Error
	return list, total, err
}

func (r *orderRepo) UpdateStoreStatusGuard(ctx context.Context, id uuid.UUID, from, to models.StoreStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND store_status = ?", id, from).
		Update("store_status", to)
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) AssignPartner(ctx context.Context, id, partnerID uuid.UUID, partnerName string, collectionOTP, deliveryOTP int32) (bool, error) {
	// Повторное назначение перезаписывает привязку и оба OTP — это штатный ре-диспатч
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivery_partner_id": partnerID,
			"partner_name":        partnerName,
			"delivery_status":     models.DeliveryStatusAssigned,
			"collection_otp":      collectionOTP,
			"delivery_otp":        deliveryOTP,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("delivery_status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) RequestReturnGuard(ctx context.Context, orderID, productID, variantID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ? AND variant_id = ? AND return_status = ? AND is_cancelled = false",
			orderID, productID, variantID, models.ReturnStatusNotRequested).
		Update("return_status", models.ReturnStatusRequested)
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) CompleteReturnGuard(ctx context.Context, orderID, itemID, storeID uuid.UUID, refundMessage string, deductCents int64) (bool, error) {
	// Одним стейтментом: позиция Requested→Completed + refund_message,
	// и сумма заказа уменьшается на зачисляемую сумму
	tx := r.db.WithContext(ctx).Exec(`
WITH upd AS (
    UPDATE order_items
    SET return_status = @completed,
        refund_message = @msg
    WHERE id = @item
      AND order_id = @ord
      AND store_id = @store
      AND return_status = @requested
      AND is_cancelled = false
    RETURNING order_id
)
UPDATE orders
SET total_amount_cents = total_amount_cents - @deduct,
    updated_at = now()
WHERE id IN (SELECT order_id FROM upd)
`, map[string]any{
		"item":      itemID,
		"ord":       orderID,
		"store":     storeID,
		"msg":       refundMessage,
		"deduct":    deductCents,
		"completed": models.ReturnStatusCompleted,
		"requested": models.ReturnStatusRequested,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) CancelItemGuard(ctx context.Context, orderID, itemID uuid.UUID) (bool, error) {
	// Отмена позиции допустима только пока заказ не взят в работу магазином
	tx := r.db.WithContext(ctx).Exec(`
UPDATE order_items
SET is_cancelled = true
FROM orders
WHERE order_items.id = @item
  AND order_items.order_id = @ord
  AND order_items.is_cancelled = false
  AND orders.id = order_items.order_id
  AND orders.store_status = @pending
`, map[string]any{
		"item":    itemID,
		"ord":     orderID,
		"pending": models.StoreStatusPending,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) MarkPaymentPaidGuard(ctx context.Context, id uuid.UUID, paymentID, method string) (bool, error) {
	// write-once: провенанс платежа фиксируется один раз
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status": models.PaymentStatusPaid,
			"payment_id":     paymentID,
			"payment_method": method,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) WithTx(ctx context.Context, fn func(txRepo OrderRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepo{db: tx})
	})
}
