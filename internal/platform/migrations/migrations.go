package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the checkout bounded context. Intended to
// replace adapter-level automigrate in deployments that manage schema
// centrally.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&shopRecord{},
		&orderRecord{},
		&sessionRecord{},
	)
}

// Shop schema mirrors the checkout Postgres shop directory.
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

// Order schema mirrors the checkout Postgres order repository. The primary
// key on order_id is the uniqueness constraint backing identifier allocation.
type orderRecord struct {
	OrderID       string    `gorm:"primaryKey;column:order_id;size:32"`
	ShopID        string    `gorm:"column:shop_id;index:idx_orders_shop_created"`
	UserID        string    `gorm:"column:user_id;index"`
	SessionID     string    `gorm:"column:session_id;index"`
	Items         []byte    `gorm:"column:items;type:jsonb"`
	SubtotalCents int64     `gorm:"column:subtotal_cents"`
	CreatedAt     time.Time `gorm:"column:created_at;index:idx_orders_shop_created"`
}

func (orderRecord) TableName() string { return "orders" }

// Session schema mirrors the checkout Postgres session store.
type sessionRecord struct {
	ID                string         `gorm:"primaryKey;column:id;size:64"`
	UserID            string         `gorm:"column:user_id;index"`
	Cart              []byte         `gorm:"column:cart;type:jsonb"`
	Sellers           []byte         `gorm:"column:sellers;type:jsonb"`
	PerShopSubtotal   []byte         `gorm:"column:per_shop_subtotal;type:jsonb"`
	GrandTotalCents   int64          `gorm:"column:grand_total_cents"`
	ShippingAddressID string         `gorm:"column:shipping_address_id"`
	Coupon            []byte         `gorm:"column:coupon;type:jsonb"`
	MintedOrderIDs    pq.StringArray `gorm:"column:minted_order_ids;type:text[]"`
	Status            string         `gorm:"column:status;type:varchar(16);index"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	ExpiresAt         time.Time      `gorm:"column:expires_at;index"`
}

func (sessionRecord) TableName() string { return "checkout_sessions" }
