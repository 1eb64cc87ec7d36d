package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/shopspring/decimal"
)

type CategoryLine struct {
	Category string
	Price    decimal.Decimal
	Quantity uint
}

// OrdersSince returns orders created at or after since, oldest id first, with their items.
func (r *GormRepo) OrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	if err := withItems(r.DB.WithContext(ctx)).
		Where("created_at >= ?", since).
		Order("id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CategoryLines returns every order line whose product belongs to one of categories,
// deleted products included.
func (r *GormRepo) CategoryLines(ctx context.Context, categories []string) ([]CategoryLine, error) {
	var lines []CategoryLine
	if err := r.DB.WithContext(ctx).
		Table("order_items").
		Select("products.category AS category, order_items.price AS price, order_items.quantity AS quantity").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.category IN ?", categories).
		Order("order_items.id ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
