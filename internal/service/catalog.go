package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/mykafka"
	"github.com/Skotchmaster/online_cafe/internal/repo"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events Publisher
}

// ProductInput is the editable part of a product. A nil InStock keeps the
// current value on edit and means in stock on create.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Category    string
	InStock     *bool
}

func (in ProductInput) validate() (decimal.Decimal, error) {
	if strings.TrimSpace(in.Name) == "" {
		return decimal.Zero, fmt.Errorf("Name is required: %w", ErrValidation)
	}
	if strings.TrimSpace(in.Price) == "" {
		return decimal.Zero, fmt.Errorf("Price is required: %w", ErrValidation)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return decimal.Zero, fmt.Errorf("Price must be a number: %w", ErrValidation)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("Price cannot be negative: %w", ErrValidation)
	}
	return price.Round(2), nil
}

func productKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("Product not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Repo.GetProducts(ctx, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return total, items, nil
}

func (s *CatalogService) ListAll(ctx context.Context) ([]models.Product, error) {
	items, err := s.Repo.ListAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	price, err := in.validate()
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       models.NewMoney(price),
		Category:    strings.TrimSpace(in.Category),
		InStock:     in.InStock == nil || *in.InStock,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, productKey(p.ID), "product_created", p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	price, err := in.validate()
	if err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = models.NewMoney(price)
	p.Category = strings.TrimSpace(in.Category)
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, productKey(p.ID), "product_updated", p)
	return p, nil
}

func (s *CatalogService) SetStock(ctx context.Context, id uint, inStock *bool) error {
	if inStock == nil {
		return fmt.Errorf("Stock status is required: %w", ErrValidation)
	}
	if err := s.Repo.SetInStock(ctx, id, *inStock); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("Product not found: %w", ErrNotFound)
		}
		return err
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, productKey(id), "product_stock_changed", map[string]any{
		"product_id": id,
		"in_stock":   *inStock,
	})
	return nil
}

// DeleteProduct hides the product from the catalog and removes it from every cart.
// Past orders keep their lines.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("Product not found: %w", ErrNotFound)
		}
		return err
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, productKey(id), "product_deleted", map[string]any{
		"product_id": id,
	})
	return nil
}
