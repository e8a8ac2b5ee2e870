package repository

import (
	"context"
	"errors"

	"fulfillment-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnerRepo interface {
	Create(ctx context.Context, p *models.DeliveryPartner) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPartner, error)
}

type partnerRepo struct{ db *gorm.DB }

func NewPartnerRepo(db *gorm.DB) PartnerRepo { return &partnerRepo{db: db} }

func (r *partnerRepo) Create(ctx context.Context, p *models.DeliveryPartner) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *partnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPartner, error) {
	var p models.DeliveryPartner
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}
