package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

type CartView struct {
	Items []models.CartItem `json:"items"`
	Total models.Money      `json:"total"`
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s *CartService) View(ctx context.Context, userID uint) (*CartView, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartView{Items: items, Total: models.NewMoney(cartTotal(items))}, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("Product ID is required: %w", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("Quantity must be at least 1: %w", ErrValidation)
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("Product not found: %w", ErrNotFound)
		}
		return nil, err
	}
	if !product.InStock {
		return nil, fmt.Errorf("%s is out of stock: %w", product.Name, ErrValidation)
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  uint(quantity),
	}
	if err := s.Repo.AddToCart(ctx, &item); err != nil {
		return nil, err
	}
	item.Product = product
	return &item, nil
}

// Update sets the quantity of one of the user's cart lines; a quantity <= 0 removes the line.
// It returns true when the line was removed.
func (s *CartService) Update(ctx context.Context, userID, itemID uint, quantity int) (bool, error) {
	if itemID == 0 {
		return false, fmt.Errorf("Item ID is required: %w", ErrValidation)
	}

	var err error
	removed := quantity <= 0
	if removed {
		err = s.Repo.DeleteCartItem(ctx, itemID, userID)
	} else {
		err = s.Repo.SetCartQuantity(ctx, itemID, userID, uint(quantity))
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("Cart item not found: %w", ErrNotFound)
	}
	return removed, err
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.Repo.ClearCart(ctx, userID)
}
