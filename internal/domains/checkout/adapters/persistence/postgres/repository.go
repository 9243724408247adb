package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var _ ports.OrderRepository = (*Repository)(nil)

// Repository persists per-seller orders in PostgreSQL using GORM. The unique
// primary key on order_id is the allocation protocol's safety net: a racing
// insert surfaces as ports.ErrIdentifierTaken and forces the allocator to
// retry with the next candidate.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order repository. Caller manages DB
// lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	OrderID       string           `gorm:"primaryKey;column:order_id;size:32"`
	ShopID        string           `gorm:"column:shop_id;index:idx_orders_shop_created"`
	UserID        string           `gorm:"column:user_id;index"`
	SessionID     string           `gorm:"column:session_id;index"`
	Items         []cartItemRecord `gorm:"column:items;serializer:json"`
	SubtotalCents int64            `gorm:"column:subtotal_cents"`
	CreatedAt     time.Time        `gorm:"column:created_at;index:idx_orders_shop_created"`
}

func (orderRecord) TableName() string { return "orders" }

type cartItemRecord struct {
	ID              string            `json:"id"`
	Quantity        int32             `json:"quantity"`
	UnitPriceCents  int64             `json:"unitPriceCents"`
	ShopID          string            `json:"shopId"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
}

// Create inserts the order, claiming its identifier through the unique
// constraint. Each call runs in its own transaction so allocator retries
// never hold locks across attempts.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if order == nil {
		return errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return err
	}
	record := toOrderRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrIdentifierTaken
	}
	return err
}

// GetByIdentifier fetches an order by its minted identifier.
func (r *Repository) GetByIdentifier(ctx context.Context, id domain.OrderIdentifier) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "order_id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// LatestSequence reads the most recently created order carrying the
// shop/year identifier prefix and returns its trailing sequence number.
func (r *Repository) LatestSequence(ctx context.Context, shopCode string, year int) (int, bool, error) {
	if err := r.ensureDB(); err != nil {
		return 0, false, err
	}
	prefix := domain.IdentifierPrefix(shopCode, year)
	var record orderRecord
	err := r.db.WithContext(ctx).
		Where("order_id LIKE ?", prefix+"%").
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	seq, err := domain.OrderIdentifier(record.OrderID).Sequence()
	if err != nil {
		// Unparseable suffix restarts the sequence; uniqueness still holds.
		return 0, false, nil
	}
	return seq, true, nil
}

// ListBySession returns every order minted for one checkout session.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toOrderRecord(order *domain.Order) orderRecord {
	items := make([]cartItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, cartItemRecord{
			ID:              item.ID,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			ShopID:          item.ShopID,
			SelectedOptions: item.SelectedOptions,
		})
	}
	return orderRecord{
		OrderID:       string(order.Identifier),
		ShopID:        order.ShopID,
		UserID:        order.UserID,
		SessionID:     order.SessionID,
		Items:         items,
		SubtotalCents: order.SubtotalCents,
		CreatedAt:     order.CreatedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.CartItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.CartItem{
			ID:              item.ID,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			ShopID:          item.ShopID,
			SelectedOptions: item.SelectedOptions,
		})
	}
	return &domain.Order{
		Identifier:    domain.OrderIdentifier(r.OrderID),
		ShopID:        r.ShopID,
		UserID:        r.UserID,
		SessionID:     r.SessionID,
		Items:         items,
		SubtotalCents: r.SubtotalCents,
		CreatedAt:     r.CreatedAt,
	}
}
