package memory

import (
	"context"
	"sync"

	"github.com/vendormesh/checkout/internal/domains/checkout/domain"
	"github.com/vendormesh/checkout/internal/domains/checkout/ports"
)

var (
	_ ports.ShopRepository  = (*ShopDirectory)(nil)
	_ ports.SellerDirectory = (*ShopDirectory)(nil)
)

// ShopDirectory serves shop configuration and payout routing from memory.
// Useful for development and tests where the real directory is absent.
type ShopDirectory struct {
	mu           sync.RWMutex
	shops        map[string]domain.Shop
	destinations map[string]string
}

func NewShopDirectory() *ShopDirectory {
	return &ShopDirectory{
		shops:        map[string]domain.Shop{},
		destinations: map[string]string{},
	}
}

// AddShop registers a shop and, when destinationID is non-empty, its payout
// destination.
func (d *ShopDirectory) AddShop(shop domain.Shop, destinationID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shops[shop.ID] = shop
	if destinationID != "" {
		d.destinations[shop.ID] = destinationID
	}
}

func (d *ShopDirectory) GetByID(_ context.Context, id string) (*domain.Shop, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	shop, ok := d.shops[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := shop
	return &clone, nil
}

func (d *ShopDirectory) LookupPayoutDestination(_ context.Context, shopID string) (*domain.SellerData, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	shop, ok := d.shops[shopID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	destination, ok := d.destinations[shopID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &domain.SellerData{
		ShopID:              shopID,
		SellerID:            shop.SellerID,
		PayoutDestinationID: destination,
	}, nil
}
