package repository_test

import (
	"context"
	"testing"
	"time"

	"fulfillment-service/internal/migrate"
	"fulfillment-service/internal/models"
	"fulfillment-service/internal/repository"
	"fulfillment-service/pkg/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := migrate.MigrateFulfillmentDB(ctx, db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.New(db), db
}

func seedOrder(t *testing.T, repo *repository.Repository, storeID uuid.UUID, items ...models.OrderItem) *models.Order {
	t.Helper()
	var total int64
	for _, it := range items {
		total += it.PriceCents * int64(it.Quantity)
	}
	ord := &models.Order{
		UserID:           uuid.New(),
		TotalAmountCents: total,
		StoreID:          storeID,
		StoreAmountCents: total,
		StoreStatus:      models.StoreStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		PaymentMethod:    "",
		OrderDate:        time.Now().UTC(),
		Items:            items,
	}
	if err := repo.Orders.Create(context.Background(), ord); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return ord
}

func item(storeID uuid.UUID, priceCents int64) models.OrderItem {
	return models.OrderItem{
		ProductID:  uuid.New(),
		VariantID:  uuid.New(),
		PriceCents: priceCents,
		Quantity:   1,
		StoreID:    storeID,
	}
}

func TestUpdateStoreStatusGuard(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	ord := seedOrder(t, repo, storeID, item(storeID, 10000))

	ok, err := repo.Orders.UpdateStoreStatusGuard(ctx, ord.ID, models.StoreStatusPending, models.StoreStatusPreparing)
	if err != nil || !ok {
		t.Fatalf("first transition: ok=%v err=%v", ok, err)
	}

	// guard по устаревшему статусу не проходит
	ok, err = repo.Orders.UpdateStoreStatusGuard(ctx, ord.ID, models.StoreStatusPending, models.StoreStatusPreparing)
	if err != nil {
		t.Fatalf("stale transition: %v", err)
	}
	if ok {
		t.Fatal("stale guard must not match")
	}

	st, err := repo.Orders.GetStoreStatus(ctx, ord.ID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if st == nil || *st != models.StoreStatusPreparing {
		t.Fatalf("status = %v, want preparing", st)
	}
}

func TestCancelItemGuard(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	ord := seedOrder(t, repo, storeID, item(storeID, 10000), item(storeID, 5000))

	ok, err := repo.Orders.CancelItemGuard(ctx, ord.ID, ord.Items[0].ID)
	if err != nil || !ok {
		t.Fatalf("cancel while pending: ok=%v err=%v", ok, err)
	}

	// отмена переживает перечитывание из базы
	got, err := repo.Orders.GetItem(ctx, ord.ID, ord.Items[0].ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got == nil || !got.IsCancelled {
		t.Fatalf("cancellation not persisted: %+v", got)
	}

	// повторная отмена — no-op
	ok, err = repo.Orders.CancelItemGuard(ctx, ord.ID, ord.Items[0].ID)
	if err != nil || ok {
		t.Fatalf("repeat cancel: ok=%v err=%v", ok, err)
	}

	// после выхода из Pending отмена запрещена
	if _, err := repo.Orders.UpdateStoreStatusGuard(ctx, ord.ID, models.StoreStatusPending, models.StoreStatusPreparing); err != nil {
		t.Fatalf("advance: %v", err)
	}
	ok, err = repo.Orders.CancelItemGuard(ctx, ord.ID, ord.Items[1].ID)
	if err != nil || ok {
		t.Fatalf("cancel after preparing: ok=%v err=%v", ok, err)
	}
}

func TestReturnLifecycle(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	it := item(storeID, 15000)
	ord := seedOrder(t, repo, storeID, it, item(storeID, 5000))

	ok, err := repo.Orders.RequestReturnGuard(ctx, ord.ID, it.ProductID, it.VariantID)
	if err != nil || !ok {
		t.Fatalf("request return: ok=%v err=%v", ok, err)
	}

	// повторная заявка не проходит
	ok, err = repo.Orders.RequestReturnGuard(ctx, ord.ID, it.ProductID, it.VariantID)
	if err != nil || ok {
		t.Fatalf("repeat request: ok=%v err=%v", ok, err)
	}

	// завершение с чужим storeId не трогает позицию
	ok, err = repo.Orders.CompleteReturnGuard(ctx, ord.ID, ord.Items[0].ID, uuid.New(), "msg", 15000)
	if err != nil || ok {
		t.Fatalf("complete with foreign store: ok=%v err=%v", ok, err)
	}

	msg := "Refund of ₹150.00 processed successfully."
	ok, err = repo.Orders.CompleteReturnGuard(ctx, ord.ID, ord.Items[0].ID, storeID, msg, 15000)
	if err != nil || !ok {
		t.Fatalf("complete return: ok=%v err=%v", ok, err)
	}

	got, err := repo.Orders.GetItem(ctx, ord.ID, ord.Items[0].ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.ReturnStatus != models.ReturnStatusCompleted {
		t.Fatalf("return status = %s", got.ReturnStatus)
	}
	if got.RefundMessage == nil || *got.RefundMessage != msg {
		t.Fatalf("refund message = %v", got.RefundMessage)
	}

	// сумма заказа уменьшилась ровно на сумму возврата
	reloaded, err := repo.Orders.GetByID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.TotalAmountCents != ord.TotalAmountCents-15000 {
		t.Fatalf("total = %d, want %d", reloaded.TotalAmountCents, ord.TotalAmountCents-15000)
	}

	// повторное завершение — no-op, сумма не уедет второй раз
	ok, err = repo.Orders.CompleteReturnGuard(ctx, ord.ID, ord.Items[0].ID, storeID, msg, 15000)
	if err != nil || ok {
		t.Fatalf("repeat complete: ok=%v err=%v", ok, err)
	}
}

func TestReturnRejectedForCancelledItem(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	it := item(storeID, 10000)
	ord := seedOrder(t, repo, storeID, it)

	if ok, err := repo.Orders.CancelItemGuard(ctx, ord.ID, ord.Items[0].ID); err != nil || !ok {
		t.Fatalf("cancel: ok=%v err=%v", ok, err)
	}

	ok, err := repo.Orders.RequestReturnGuard(ctx, ord.ID, it.ProductID, it.VariantID)
	if err != nil || ok {
		t.Fatalf("return request for cancelled item: ok=%v err=%v", ok, err)
	}

	ok, err = repo.Orders.CompleteReturnGuard(ctx, ord.ID, ord.Items[0].ID, storeID, "msg", 10000)
	if err != nil || ok {
		t.Fatalf("return completion for cancelled item: ok=%v err=%v", ok, err)
	}
}

func TestMarkPaymentPaidWriteOnce(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	ord := seedOrder(t, repo, storeID, item(storeID, 10000))

	ok, err := repo.Orders.MarkPaymentPaidGuard(ctx, ord.ID, "pay_abc", "card")
	if err != nil || !ok {
		t.Fatalf("mark paid: ok=%v err=%v", ok, err)
	}

	ok, err = repo.Orders.MarkPaymentPaidGuard(ctx, ord.ID, "pay_other", "upi")
	if err != nil || ok {
		t.Fatalf("second mark paid: ok=%v err=%v", ok, err)
	}

	reloaded, err := repo.Orders.GetByID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("payment status = %s", reloaded.PaymentStatus)
	}
	if reloaded.PaymentID == nil || *reloaded.PaymentID != "pay_abc" || reloaded.PaymentMethod != "card" {
		t.Fatalf("payment provenance overwritten: id=%v method=%s", reloaded.PaymentID, reloaded.PaymentMethod)
	}
}

func TestAssignPartnerAndDeliveryStatus(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	ord := seedOrder(t, repo, storeID, item(storeID, 10000))

	partner := &models.DeliveryPartner{FirstName: "Priya", LastName: "Nair", Phone: "+919900000000"}
	if err := repo.Partners.Create(ctx, partner); err != nil {
		t.Fatalf("create partner: %v", err)
	}

	ok, err := repo.Orders.AssignPartner(ctx, ord.ID, partner.ID, "Priya Nair", 123456, 654321)
	if err != nil || !ok {
		t.Fatalf("assign partner: ok=%v err=%v", ok, err)
	}

	reloaded, err := repo.Orders.GetByID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.DeliveryStatus != models.DeliveryStatusAssigned {
		t.Fatalf("delivery status = %q", reloaded.DeliveryStatus)
	}
	if reloaded.DeliveryPartnerID == nil || *reloaded.DeliveryPartnerID != partner.ID {
		t.Fatalf("partner id = %v", reloaded.DeliveryPartnerID)
	}
	if reloaded.CollectionOTP == nil || reloaded.DeliveryOTP == nil || *reloaded.CollectionOTP != 123456 || *reloaded.DeliveryOTP != 654321 {
		t.Fatalf("otps = %v/%v", reloaded.CollectionOTP, reloaded.DeliveryOTP)
	}

	ok, err = repo.Orders.UpdateDeliveryStatus(ctx, ord.ID, models.DeliveryStatusDelivered)
	if err != nil || !ok {
		t.Fatalf("delivery status: ok=%v err=%v", ok, err)
	}
}

func TestListByStore(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	storeA := uuid.New()
	storeB := uuid.New()

	seedOrder(t, repo, storeA, item(storeA, 10000))
	second := seedOrder(t, repo, storeA, item(storeA, 5000), item(storeB, 7000))
	seedOrder(t, repo, storeB, item(storeB, 3000))

	paid := models.PaymentStatusPaid
	if ok, err := repo.Orders.MarkPaymentPaidGuard(ctx, second.ID, "pay_x", "card"); err != nil || !ok {
		t.Fatalf("mark paid: ok=%v err=%v", ok, err)
	}

	orders, total, err := repo.Orders.ListByStore(ctx, storeA, repository.StoreOrderFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", total, len(orders))
	}
	// витрина магазина видит только свои позиции
	for _, o := range orders {
		for _, it := range o.Items {
			if it.StoreID != storeA {
				t.Fatalf("foreign item leaked into store listing: %s", it.StoreID)
			}
		}
	}

	orders, total, err = repo.Orders.ListByStore(ctx, storeA, repository.StoreOrderFilter{PaymentStatus: &paid})
	if err != nil {
		t.Fatalf("list paid: %v", err)
	}
	if total != 1 || len(orders) != 1 || orders[0].ID != second.ID {
		t.Fatalf("paid filter: total=%d len=%d", total, len(orders))
	}
}

func TestWalletCredit(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	for _, amt := range []int64{15000, 5000} {
		ok, err := repo.Wallets.Credit(ctx, userID, amt)
		if err != nil || !ok {
			t.Fatalf("credit %d: ok=%v err=%v", amt, ok, err)
		}
	}

	balance, err := repo.Wallets.GetBalance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 20000 {
		t.Fatalf("balance = %d, want 20000", balance)
	}

	var txCount int64
	if err := db.Model(&models.WalletTransaction{}).Where("user_id = ?", userID).Count(&txCount).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if txCount != 2 {
		t.Fatalf("transactions = %d, want 2", txCount)
	}

	// нулевые и отрицательные суммы не зачисляются
	ok, err := repo.Wallets.Credit(ctx, userID, 0)
	if err != nil || ok {
		t.Fatalf("zero credit: ok=%v err=%v", ok, err)
	}
}
