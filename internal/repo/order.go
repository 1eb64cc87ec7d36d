package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// UnavailableError names the cart line that blocked checkout. An empty Name means the
// product was deleted.
type UnavailableError struct {
	ProductID uint
	Name      string
}

func (e *UnavailableError) Error() string {
	if e.Name == "" {
		return "A product in your cart is no longer available"
	}
	return e.Name + " is out of stock"
}

func (e *UnavailableError) Unwrap() error { return ErrProductGone }

type OrderFilter struct {
	UserID *uint
	Status []models.OrderStatus
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

// Checkout turns the user's cart into a pending order priced at the current product prices.
// The order, its items and the cart deletion commit together or not at all.
func (r *GormRepo) Checkout(ctx context.Context, userID uint, now time.Time) (*models.Order, error) {
	var order models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart []models.CartItem
		if err := tx.Preload("Product").Where("user_id = ?", userID).Order("id ASC").Find(&cart).Error; err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart))
		ids := make([]uint, 0, len(cart))
		for _, line := range cart {
			if line.Product == nil || !line.Product.InStock {
				ue := &UnavailableError{ProductID: line.ProductID}
				if line.Product != nil {
					ue.Name = line.Product.Name
				}
				return ue
			}
			item := models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price,
			}
			total = total.Add(item.LineTotal())
			items = append(items, item)
			ids = append(ids, line.ID)
		}

		order = models.Order{
			UserID:     userID,
			CreatedAt:  now,
			TotalPrice: models.NewMoney(total),
			Status:     models.OrderStatusPending,
			Items:      items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		res := tx.Where("id IN ? AND user_id = ?", ids, userID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return ErrCartChanged
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := withItems(r.DB.WithContext(ctx)).Preload("User").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns matching orders newest first.
func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := withItems(r.DB.WithContext(ctx)).Preload("User").Model(&models.Order{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if len(f.Status) > 0 {
		q = q.Where("status IN ?", f.Status)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus moves the order from one status to another, failing if it is no longer in from.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}
