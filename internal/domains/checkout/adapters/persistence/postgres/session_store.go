package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists TTL-bound checkout sessions in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB
// lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	store := &SessionStore{db: db}
	if db != nil {
		_ = db.AutoMigrate(&sessionRecord{})
	}
	return store
}

type sessionRecord struct {
	ID                string             `gorm:"primaryKey;column:id;size:64"`
	UserID            string             `gorm:"column:user_id;index"`
	Cart              []cartItemRecord   `gorm:"column:cart;serializer:json"`
	Sellers           []sellerDataRecord `gorm:"column:sellers;serializer:json"`
	PerShopSubtotal   map[string]int64   `gorm:"column:per_shop_subtotal;serializer:json"`
	GrandTotalCents   int64              `gorm:"column:grand_total_cents"`
	ShippingAddressID string             `gorm:"column:shipping_address_id"`
	Coupon            *couponRecord      `gorm:"column:coupon;serializer:json"`
	MintedOrderIDs    pq.StringArray     `gorm:"column:minted_order_ids;type:text[]"`
	Status            string             `gorm:"column:status;type:varchar(16);index"`
	CreatedAt         time.Time          `gorm:"column:created_at"`
	ExpiresAt         time.Time          `gorm:"column:expires_at;index"`
}

func (sessionRecord) TableName() string { return "checkout_sessions" }

type sellerDataRecord struct {
	ShopID              string `json:"shopId"`
	SellerID            string `json:"sellerId"`
	PayoutDestinationID string `json:"payoutDestinationId"`
}

type couponRecord struct {
	Code           string `json:"code"`
	PercentOff     int64  `json:"percentOff,omitempty"`
	AmountOffCents int64  `json:"amountOffCents,omitempty"`
	TargetItemID   string `json:"targetItemId,omitempty"`
}

// Save inserts the freshly built session.
func (s *SessionStore) Save(ctx context.Context, session *domain.CheckoutSession) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if session == nil {
		return errors.New("session is nil")
	}
	record := toSessionRecord(session)
	return s.db.WithContext(ctx).Create(&record).Error
}

// Get loads a session by id. Expiry is judged by the caller against the
// session's ExpiresAt, not here, so clock handling stays in one place.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record sessionRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// AppendMintedIdentifier records one allocated identifier on the session row.
func (s *SessionStore) AppendMintedIdentifier(ctx context.Context, sessionID string, id domain.OrderIdentifier) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(&sessionRecord{}).
		Where("id = ?", sessionID).
		Update("minted_order_ids", gorm.Expr("array_append(minted_order_ids, ?)", string(id)))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// MarkSettled transitions an open session to its terminal settled state.
func (s *SessionStore) MarkSettled(ctx context.Context, sessionID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(&sessionRecord{}).
		Where("id = ? AND status = ?", sessionID, string(domain.StatusOpen)).
		Update("status", string(domain.StatusSettled))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// PurgeExpired deletes settled sessions and sessions past their TTL.
// Housekeeping only; request paths never call this.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).
		Where("status = ? OR expires_at <= ?", string(domain.StatusSettled), time.Now()).
		Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

func toSessionRecord(session *domain.CheckoutSession) sessionRecord {
	cart := make([]cartItemRecord, 0, len(session.Cart))
	for _, item := range session.Cart {
		cart = append(cart, cartItemRecord{
			ID:              item.ID,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			ShopID:          item.ShopID,
			SelectedOptions: item.SelectedOptions,
		})
	}
	sellers := make([]sellerDataRecord, 0, len(session.Sellers))
	for _, seller := range session.Sellers {
		sellers = append(sellers, sellerDataRecord(seller))
	}
	minted := make(pq.StringArray, 0, len(session.MintedOrderIDs))
	for _, id := range session.MintedOrderIDs {
		minted = append(minted, string(id))
	}
	record := sessionRecord{
		ID:                session.ID,
		UserID:            session.UserID,
		Cart:              cart,
		Sellers:           sellers,
		PerShopSubtotal:   session.PerShopSubtotal,
		GrandTotalCents:   session.GrandTotalCents,
		ShippingAddressID: session.ShippingAddressID,
		MintedOrderIDs:    minted,
		Status:            string(session.Status),
		CreatedAt:         session.CreatedAt,
		ExpiresAt:         session.ExpiresAt,
	}
	if session.Coupon != nil {
		record.Coupon = &couponRecord{
			Code:           session.Coupon.Code,
			PercentOff:     session.Coupon.PercentOff,
			AmountOffCents: session.Coupon.AmountOffCents,
			TargetItemID:   session.Coupon.TargetItemID,
		}
	}
	return record
}

func (r sessionRecord) toDomain() *domain.CheckoutSession {
	cart := make([]domain.CartItem, 0, len(r.Cart))
	for _, item := range r.Cart {
		cart = append(cart, domain.CartItem{
			ID:              item.ID,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			ShopID:          item.ShopID,
			SelectedOptions: item.SelectedOptions,
		})
	}
	sellers := make([]domain.SellerData, 0, len(r.Sellers))
	for _, seller := range r.Sellers {
		sellers = append(sellers, domain.SellerData(seller))
	}
	minted := make([]domain.OrderIdentifier, 0, len(r.MintedOrderIDs))
	for _, id := range r.MintedOrderIDs {
		minted = append(minted, domain.OrderIdentifier(id))
	}
	session := &domain.CheckoutSession{
		ID:                r.ID,
		UserID:            r.UserID,
		Cart:              cart,
		Sellers:           sellers,
		PerShopSubtotal:   r.PerShopSubtotal,
		GrandTotalCents:   r.GrandTotalCents,
		ShippingAddressID: r.ShippingAddressID,
		MintedOrderIDs:    minted,
		Status:            domain.Status(r.Status),
		CreatedAt:         r.CreatedAt,
		ExpiresAt:         r.ExpiresAt,
	}
	if r.Coupon != nil {
		session.Coupon = &domain.Coupon{
			Code:           r.Coupon.Code,
			PercentOff:     r.Coupon.PercentOff,
			AmountOffCents: r.Coupon.AmountOffCents,
			TargetItemID:   r.Coupon.TargetItemID,
		}
	}
	return session
}
