package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/souqly/souqly-backend/pkg/db/models"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository builds the catalog reader checkout validates against.
func NewProductRepository(db *gorm.DB) ProductReader {
	return &productRepository{db: db}
}

// AvailableStock returns the current stock for a product. A product that is
// not in the catalog has zero stock, so a stale cart line fails quantity
// validation rather than erroring.
func (r *productRepository) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Select("stock_qty").
		Where("id = ?", productID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return product.StockQty, nil
}
