package repository

import "gorm.io/gorm"

type Repository struct {
	DB       *gorm.DB
	Orders   OrderRepo
	Partners PartnerRepo
	Wallets  WalletRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:       db,
		Orders:   NewOrderRepo(db),
		Partners: NewPartnerRepo(db),
		Wallets:  NewWalletRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }
