package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var (
	_ ports.ShopRepository  = (*ShopDirectory)(nil)
	_ ports.SellerDirectory = (*ShopDirectory)(nil)
)

// ShopDirectory reads shop configuration and payout routing from PostgreSQL.
// Shops are written by the seller-onboarding surface; this adapter is
// read-only.
type ShopDirectory struct {
	db *gorm.DB
}

// NewShopDirectory wires a PostgreSQL-backed shop directory.
func NewShopDirectory(db *gorm.DB) *ShopDirectory {
	dir := &ShopDirectory{db: db}
	if db != nil {
		_ = db.AutoMigrate(&shopRecord{})
	}
	return dir
}

type shopRecord struct {
	ID                  string    `gorm:"primaryKey;column:id;size:64"`
	Code                string    `gorm:"column:code;size:16;uniqueIndex"`
	Name                string    `gorm:"column:name"`
	SellerID            string    `gorm:"column:seller_id;index"`
	PayoutDestinationID string    `gorm:"column:payout_destination_id"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (shopRecord) TableName() string { return "shops" }

// GetByID fetches one shop's configuration.
func (d *ShopDirectory) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	record, err := d.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Shop{
		ID:       record.ID,
		Code:     record.Code,
		Name:     record.Name,
		SellerID: record.SellerID,
	}, nil
}

// LookupPayoutDestination resolves where a shop's settlement share is paid.
// A shop without a destination cannot receive funds and must not reach
// checkout, so the lookup reports it as missing.
func (d *ShopDirectory) LookupPayoutDestination(ctx context.Context, shopID string) (*domain.SellerData, error) {
	record, err := d.load(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if record.PayoutDestinationID == "" {
		return nil, ports.ErrNotFound
	}
	return &domain.SellerData{
		ShopID:              record.ID,
		SellerID:            record.SellerID,
		PayoutDestinationID: record.PayoutDestinationID,
	}, nil
}

func (d *ShopDirectory) load(ctx context.Context, id string) (*shopRecord, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("postgres shop directory not configured")
	}
	var record shopRecord
	if err := d.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}
