package service

import (
	"context"
	"time"

	"fulfillment-service/internal/models"
	"fulfillment-service/internal/otp"
	"fulfillment-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Фиксированный порядок магазинных статусов; Collected — терминальный
var storeStatusSequence = []models.StoreStatus{
	models.StoreStatusPending,
	models.StoreStatusPreparing,
	models.StoreStatusReadyForPickup,
	models.StoreStatusCollected,
}

func nextStoreStatus(s models.StoreStatus) (models.StoreStatus, bool) {
	for i, cur := range storeStatusSequence {
		if cur == s && i+1 < len(storeStatusSequence) {
			return storeStatusSequence[i+1], true
		}
	}
	return "", false
}

func validDeliveryStatus(s models.DeliveryStatus) bool {
	switch s {
	case models.DeliveryStatusAssigned, models.DeliveryStatusCollected, models.DeliveryStatusDelivered:
		return true
	}
	return false
}

type fulfillmentService struct {
	repo     *repository.Repository
	wallet   Wallet
	verifier SignatureVerifier
	events   EventBus
	log      *zap.Logger
	mintOTP  func() int32
	now      func() time.Time
}

func NewFulfillmentService(repo *repository.Repository, wallet Wallet, verifier SignatureVerifier, events EventBus, log *zap.Logger) FulfillmentService {
	return &fulfillmentService{
		repo:     repo,
		wallet:   wallet,
		verifier: verifier,
		events:   events,
		log:      log,
		mintOTP:  otp.Generate,
		now:      time.Now,
	}
}

func (s *fulfillmentService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *fulfillmentService) ListStoreOrders(ctx context.Context, storeID uuid.UUID, f StoreOrdersFilter) ([]*models.Order, int64, error) {
	return s.repo.Orders.ListByStore(ctx, storeID, repository.StoreOrderFilter{
		PaymentStatus: f.PaymentStatus,
		PaymentMethod: f.PaymentMethod,
		From:          f.From,
		To:            f.To,
		SortDesc:      f.SortDesc,
		Limit:         f.Limit,
		Offset:        f.Offset,
	})
}

func (s *fulfillmentService) StoreStatusValues() []models.StoreStatus {
	out := make([]models.StoreStatus, len(storeStatusSequence))
	copy(out, storeStatusSequence)
	return out
}

func (s *fulfillmentService) CurrentStoreStatus(ctx context.Context, orderID uuid.UUID) (models.StoreStatus, error) {
	st, err := s.repo.Orders.GetStoreStatus(ctx, orderID)
	if err != nil {
		return "", err
	}
	if st == nil {
		return "", ErrOrderNotFound
	}
	return *st, nil
}

// AdvanceStoreStatus продвигает заказ на следующий магазинный статус.
// Выход из ReadyForPickup требует предъявления collectionOTP. Запись —
// условный UPDATE по наблюдаемому статусу: ноль строк = гонка, ErrConflict,
// вызывающий может повторить операцию целиком.
func (s *fulfillmentService) AdvanceStoreStatus(ctx context.Context, orderID uuid.UUID, presentedOTP *int32) (*StatusChange, error) {
	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	if ord.StoreStatus == models.StoreStatusReadyForPickup {
		if presentedOTP == nil || ord.CollectionOTP == nil || *presentedOTP != *ord.CollectionOTP {
			return nil, ErrInvalidOTP
		}
	}

	next, ok := nextStoreStatus(ord.StoreStatus)
	if !ok {
		return nil, ErrInvalidTransition
	}

	moved, err := s.repo.Orders.UpdateStoreStatusGuard(ctx, orderID, ord.StoreStatus, next)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrConflict
	}

	if s.events != nil {
		_ = s.events.PublishStoreStatusChanged(ctx, StoreStatusChangedEvent{
			OrderID:          orderID,
			StoreID:          ord.StoreID,
			Previous:         ord.StoreStatus,
			New:              next,
			StoreAmountCents: ord.StoreAmountCents,
			ChangedAt:        s.now(),
		})
	}

	return &StatusChange{
		Previous:         ord.StoreStatus,
		New:              next,
		StoreAmountCents: ord.StoreAmountCents,
		StoreID:          ord.StoreID,
	}, nil
}

// AssignPartner привязывает партнёра к заказу и чеканит оба OTP заново.
// Повторный вызов с другим партнёром — штатный ре-диспатч, не ошибка.
func (s *fulfillmentService) AssignPartner(ctx context.Context, in AssignPartnerInput) error {
	name := in.PartnerName
	if name == "" {
		p, err := s.repo.Partners.GetByID(ctx, in.PartnerID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPartnerNotFound
		}
		name = p.FirstName + " " + p.LastName
	}

	collection := s.mintOTP()
	delivery := s.mintOTP()
	for delivery == collection {
		delivery = s.mintOTP()
	}

	ok, err := s.repo.Orders.AssignPartner(ctx, in.OrderID, in.PartnerID, name, collection, delivery)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateDeliveryStatus — безусловный переход на этом слое. Сверку deliveryOTP
// перед терминальным статусом делает вызывающий: исходная система разносит
// эту проверку и магазинный OTP-гейт по разным зонам ответственности.
func (s *fulfillmentService) UpdateDeliveryStatus(ctx context.Context, orderID uuid.UUID, status models.DeliveryStatus) (bool, error) {
	if !validDeliveryStatus(status) {
		return false, ErrUnknownStatus
	}
	ok, err := s.repo.Orders.UpdateDeliveryStatus(ctx, orderID, status)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrOrderNotFound
	}
	return true, nil
}

// RequestReturn: условный апдейт по (order, product, variant, NotRequested,
// !cancelled). Ноль строк — ожидаемый исход повторной заявки, не ошибка.
func (s *fulfillmentService) RequestReturn(ctx context.Context, orderID, productID, variantID uuid.UUID) (bool, error) {
	return s.repo.Orders.RequestReturnGuard(ctx, orderID, productID, variantID)
}

// CompleteReturn завершает возврат позиции и зачисляет деньги на кошелёк.
// Скоуп магазина (storeId) проверяется на уровне данных, в самом guard-е.
// «Возврат принят» и «деньги ушли» — разные исходы: при обнулении суммы
// купоном операция отвечает false, хотя позиция уже помечена Completed.
func (s *fulfillmentService) CompleteReturn(ctx context.Context, orderID, itemID, storeID uuid.UUID) (bool, error) {
	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if ord == nil {
		return false, ErrOrderNotFound
	}

	var item *models.OrderItem
	for i := range ord.Items {
		if ord.Items[i].ID == itemID {
			item = &ord.Items[i]
			break
		}
	}
	if item == nil {
		return false, nil
	}

	var couponMin *int64
	if ord.CouponCode != nil {
		couponMin = ord.CouponMinOrderCents
	}
	decision := CalculateRefund(ord.TotalAmountCents, couponMin, item.PriceCents)

	// refund_message пишется в том же условном стейтменте, что и переход
	// Requested→Completed, поэтому максимум один раз
	done, err := s.repo.Orders.CompleteReturnGuard(ctx, orderID, itemID, storeID, decision.Message, decision.AmountCents)
	if err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}

	if s.events != nil {
		_ = s.events.PublishReturnCompleted(ctx, ReturnCompletedEvent{
			OrderID:       orderID,
			ItemID:        itemID,
			UserID:        ord.UserID,
			AmountCents:   decision.AmountCents,
			RefundMessage: decision.Message,
			CompletedAt:   s.now(),
		})
	}

	if decision.AmountCents == 0 {
		return false, nil
	}

	credited, err := s.wallet.Credit(ctx, ord.UserID, decision.AmountCents)
	if err != nil || !credited {
		// Статус уже записан, деньги не ушли. Не откатываем — фиксируем
		// расхождение для сверки.
		s.log.Error("wallet credit failed after return completion",
			zap.String("order_id", orderID.String()),
			zap.String("item_id", itemID.String()),
			zap.String("user_id", ord.UserID.String()),
			zap.Int64("amount_cents", decision.AmountCents),
			zap.Error(err))
		if s.events != nil {
			_ = s.events.PublishRefundInconsistency(ctx, RefundInconsistencyEvent{
				OrderID:     orderID,
				ItemID:      itemID,
				UserID:      ord.UserID,
				AmountCents: decision.AmountCents,
				OccurredAt:  s.now(),
			})
		}
		return false, err
	}

	return true, nil
}

// CancelItem помечает позицию отменённой, пока заказ ещё Pending у магазина.
// Guard и запись — одним условным UPDATE.
func (s *fulfillmentService) CancelItem(ctx context.Context, orderID, itemID uuid.UUID) (bool, error) {
	return s.repo.Orders.CancelItemGuard(ctx, orderID, itemID)
}

// ConfirmPayment: доверяем платёжному событию только после сверки подписи,
// затем write-once фиксация провенанса платежа.
func (s *fulfillmentService) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (bool, error) {
	if s.verifier == nil || !s.verifier.Verify(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return false, ErrInvalidSignature
	}
	return s.repo.Orders.MarkPaymentPaidGuard(ctx, in.OrderID, in.PaymentID, in.PaymentMethod)
}
