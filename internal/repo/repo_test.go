package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/testutil"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(testutil.InitTestDB(t))
}

func TestAddToCart_MergesQuantity(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	p := testutil.SeedProduct(t, r.DB, "Latte", "3.50", "coffee")

	first := models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, &first))
	second := models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 3}
	require.NoError(t, r.AddToCart(ctx, &second))

	items, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(5), items[0].Quantity)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Latte", items[0].Product.Name)
}

func TestCartItem_OwnershipScoped(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	other := testutil.SeedUser(t, r.DB, "+15550000002", "pw", false)
	p := testutil.SeedProduct(t, r.DB, "Tea", "2.00", "tea")
	item := testutil.SeedCartItem(t, r.DB, owner.ID, p.ID, 1)

	_, err := r.GetCartItem(ctx, item.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.SetCartQuantity(ctx, item.ID, other.ID, 4), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.DeleteCartItem(ctx, item.ID, other.ID), gorm.ErrRecordNotFound)

	require.NoError(t, r.SetCartQuantity(ctx, item.ID, owner.ID, 4))
	got, err := r.GetCartItem(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.Quantity)
}

func TestCheckout_CreatesOrderAndEmptiesCart(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	a := testutil.SeedProduct(t, r.DB, "A", "3.50", "coffee")
	b := testutil.SeedProduct(t, r.DB, "B", "5.00", "dessert")
	testutil.SeedCartItem(t, r.DB, u.ID, a.ID, 2)
	testutil.SeedCartItem(t, r.DB, u.ID, b.ID, 1)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	order, err := r.Checkout(ctx, u.ID, now)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("12.00")))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "A", stored.Items[0].Product.Name)
	assert.True(t, stored.CreatedAt.Equal(now))
}

func TestCheckout_EmptyCart(t *testing.T) {
	r := newRepo(t)
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)

	_, err := r.Checkout(context.Background(), u.ID, time.Now().UTC())
	assert.ErrorIs(t, err, ErrEmptyCart)

	n, err := r.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckout_OutOfStockRollsBack(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	a := testutil.SeedProduct(t, r.DB, "A", "3.50", "coffee")
	b := testutil.SeedProduct(t, r.DB, "B", "5.00", "dessert")
	testutil.SeedCartItem(t, r.DB, u.ID, a.ID, 1)
	testutil.SeedCartItem(t, r.DB, u.ID, b.ID, 1)
	require.NoError(t, r.SetInStock(ctx, b.ID, false))

	_, err := r.Checkout(ctx, u.ID, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductGone))

	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 2)
	n, err := r.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckout_CartChangedRollsBack(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	a := testutil.SeedProduct(t, r.DB, "A", "3.50", "coffee")
	b := testutil.SeedProduct(t, r.DB, "B", "5.00", "dessert")
	first := testutil.SeedCartItem(t, r.DB, u.ID, a.ID, 1)
	testutil.SeedCartItem(t, r.DB, u.ID, b.ID, 1)

	// Remove one priced row inside the checkout transaction, right before the cart delete.
	removed := false
	err := r.DB.Callback().Delete().Before("gorm:delete").Register("test:remove_cart_row", func(tx *gorm.DB) {
		if removed || tx.Statement.Table != "cart_items" {
			return
		}
		removed = true
		tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM cart_items WHERE id = ?", first.ID)
	})
	require.NoError(t, err)

	_, err = r.Checkout(ctx, u.ID, time.Now().UTC())
	require.ErrorIs(t, err, ErrCartChanged)
	assert.True(t, removed)

	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 2)
	n, err := r.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	var items int64
	require.NoError(t, r.DB.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestDeleteProduct_SoftDeletesAndCleansCarts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	p := testutil.SeedProduct(t, r.DB, "Scone", "2.25", "dessert")
	keep := testutil.SeedProduct(t, r.DB, "Latte", "3.50", "coffee")
	testutil.SeedCartItem(t, r.DB, u.ID, p.ID, 1)
	testutil.SeedCartItem(t, r.DB, u.ID, keep.ID, 1)

	order := models.Order{UserID: u.ID, TotalPrice: p.Price, Status: models.OrderStatusCompleted,
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: p.Price}}}
	require.NoError(t, r.DB.Create(&order).Error)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), gorm.ErrRecordNotFound)

	_, err := r.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, keep.ID, cart[0].ProductID)

	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Items[0].Product)
	assert.Equal(t, "Scone", stored.Items[0].Product.Name)
}

func TestUpdateOrderStatus_Conflict(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	order := models.Order{UserID: u.ID, TotalPrice: models.NewMoney(decimal.NewFromInt(1)), Status: models.OrderStatusPending}
	require.NoError(t, r.DB.Create(&order).Error)

	require.NoError(t, r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusPreparing))
	assert.ErrorIs(t, r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled), ErrStatusConflict)
}

func TestListOrders_FilterAndOrder(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	other := testutil.SeedUser(t, r.DB, "+15550000002", "pw", false)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mk := func(userID uint, status models.OrderStatus, at time.Time) models.Order {
		o := models.Order{UserID: userID, TotalPrice: models.NewMoney(decimal.NewFromInt(1)), Status: status, CreatedAt: at}
		require.NoError(t, r.DB.Create(&o).Error)
		return o
	}
	older := mk(u.ID, models.OrderStatusPending, base)
	newer := mk(u.ID, models.OrderStatusCompleted, base.Add(time.Hour))
	mk(other.ID, models.OrderStatusPending, base.Add(2*time.Hour))

	mine, err := r.ListOrders(ctx, OrderFilter{UserID: &u.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	pending, err := r.ListOrders(ctx, OrderFilter{Status: []models.OrderStatus{models.OrderStatusPending}})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestRotateRefreshToken(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	old := models.RefreshToken{UserID: 1, Token: "h1", JTI: "j1", ExpiresAt: now.Add(time.Hour).Unix()}
	require.NoError(t, r.SaveRefreshToken(ctx, &old))

	next := models.RefreshToken{UserID: 1, Token: "h2", JTI: "j2", ExpiresAt: now.Add(time.Hour).Unix()}
	require.NoError(t, r.RotateRefreshToken(ctx, "j1", &next, now))

	got, err := r.FindRefreshByJTI(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	again := models.RefreshToken{UserID: 1, Token: "h3", JTI: "j3", ExpiresAt: now.Add(time.Hour).Unix()}
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "j1", &again, now), ErrTokenUnavailable)
}

func TestVerificationCode_UpsertReplaces(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.UpsertVerificationCode(ctx, &models.VerificationCode{
		Phone: "+15550000001", CodeHash: "a", ExpiresAt: now.Add(time.Minute), CreatedAt: now,
	}))
	require.NoError(t, r.IncrementVerificationAttempts(ctx, "+15550000001"))
	require.NoError(t, r.UpsertVerificationCode(ctx, &models.VerificationCode{
		Phone: "+15550000001", CodeHash: "b", ExpiresAt: now.Add(time.Minute), CreatedAt: now,
	}))

	got, err := r.GetVerificationCode(ctx, "+15550000001")
	require.NoError(t, err)
	assert.Equal(t, "b", got.CodeHash)
	assert.Zero(t, got.Attempts)

	require.NoError(t, r.DeleteVerificationCode(ctx, "+15550000001"))
	_, err = r.GetVerificationCode(ctx, "+15550000001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCategoryLines(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, r.DB, "+15550000001", "pw", false)
	coffee := testutil.SeedProduct(t, r.DB, "Latte", "3.50", "coffee")
	snack := testutil.SeedProduct(t, r.DB, "Chips", "1.00", "snack")

	order := models.Order{UserID: u.ID, TotalPrice: models.NewMoney(decimal.RequireFromString("8.00")), Status: models.OrderStatusCompleted,
		Items: []models.OrderItem{
			{ProductID: coffee.ID, Quantity: 2, Price: coffee.Price},
			{ProductID: snack.ID, Quantity: 1, Price: snack.Price},
		}}
	require.NoError(t, r.DB.Create(&order).Error)

	lines, err := r.CategoryLines(ctx, []string{"coffee", "tea", "dessert"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "coffee", lines[0].Category)
	assert.Equal(t, uint(2), lines[0].Quantity)
	assert.True(t, lines[0].Price.Equal(decimal.RequireFromString("3.5")))
}
