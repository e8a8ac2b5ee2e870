package repository

import (
	"context"
	"errors"

	"fulfillment-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletRepo interface {
	// Credit атомарно увеличивает баланс и пишет CREDIT-транзакцию.
	// Идемпотентность на вызывающем: один успешный возврат = один вызов.
	Credit(ctx context.Context, userID uuid.UUID, amountCents int64) (bool, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}

type walletRepo struct{ db *gorm.DB }

func NewWalletRepo(db *gorm.DB) WalletRepo { return &walletRepo{db: db} }

func (r *walletRepo) Credit(ctx context.Context, userID uuid.UUID, amountCents int64) (bool, error) {
	if amountCents <= 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
INSERT INTO wallets (user_id, balance_cents, updated_at)
VALUES (@uid, @amt, now())
ON CONFLICT (user_id) DO UPDATE
SET balance_cents = wallets.balance_cents + @amt,
    updated_at = now()
`, map[string]any{"uid": userID, "amt": amountCents}).Error; err != nil {
			return err
		}

		return tx.Create(&models.WalletTransaction{
			UserID:      userID,
			AmountCents: amountCents,
			Type:        models.TransactionCredit,
			Status:      models.TransactionSuccess,
		}).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *walletRepo) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var w models.Wallet
	err := r.db.WithContext(ctx).First(&w, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return w.BalanceCents, err
}
