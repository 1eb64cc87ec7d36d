package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/testutil"
)

func TestCheckout_Example(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	a := testutil.SeedProduct(t, env.Repo.DB, "A", "3.50", "coffee")
	b := testutil.SeedProduct(t, env.Repo.DB, "B", "5.00", "dessert")
	_, err := env.Cart.Add(ctx, u.ID, a.ID, 2)
	require.NoError(t, err)
	_, err = env.Cart.Add(ctx, u.ID, b.ID, 1)
	require.NoError(t, err)

	order, err := env.Orders.Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("12.00")))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.CreatedAt.Equal(env.Clock.Now()))

	sum := decimal.Zero
	for _, it := range order.Items {
		sum = sum.Add(it.LineTotal())
	}
	assert.True(t, sum.Equal(order.TotalPrice.Decimal))

	view, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	n, err := env.Repo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, env.Events.types(), "order_placed")
}

func TestCheckout_UsesCurrentPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	p := testutil.SeedProduct(t, env.Repo.DB, "Latte", "3.50", "coffee")
	testutil.SeedCartItem(t, env.Repo.DB, u.ID, p.ID, 2)

	_, err := env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{Name: "Latte", Price: "4.00", Category: "coffee"})
	require.NoError(t, err)

	order, err := env.Orders.Checkout(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("8.00")))
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("4.00")))
}

func TestCheckout_EmptyCartWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)

	_, err := env.Orders.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	n, err := env.Repo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, env.Events.types())
}

func TestCheckout_OutOfStockIsValidationError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	p := testutil.SeedProduct(t, env.Repo.DB, "Latte", "3.50", "coffee")
	testutil.SeedCartItem(t, env.Repo.DB, u.ID, p.ID, 1)
	f := false
	require.NoError(t, env.Catalog.SetStock(ctx, p.ID, &f))

	_, err := env.Orders.Checkout(ctx, u.ID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Latte is out of stock: validation")

	view, err := env.Cart.View(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestConfirmation_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	other := testutil.SeedUser(t, env.Repo.DB, "+15559999999", "pw", false)
	p := testutil.SeedProduct(t, env.Repo.DB, "Latte", "3.50", "coffee")
	testutil.SeedCartItem(t, env.Repo.DB, owner.ID, p.ID, 1)

	order, err := env.Orders.Checkout(ctx, owner.ID)
	require.NoError(t, err)

	got, err := env.Orders.Confirmation(ctx, owner.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Latte", got.Items[0].Product.Name)

	_, err = env.Orders.Confirmation(ctx, other.ID, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.Orders.Confirmation(ctx, owner.ID, order.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func placeOrder(t *testing.T, env *testEnv, userID uint) *models.Order {
	t.Helper()
	p := testutil.SeedProduct(t, env.Repo.DB, "Item", "2.00", "coffee")
	testutil.SeedCartItem(t, env.Repo.DB, userID, p.ID, 1)
	order, err := env.Orders.Checkout(context.Background(), userID)
	require.NoError(t, err)
	return order
}

func TestUpdateStatus_Transitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	order := placeOrder(t, env, u.ID)

	_, err := env.Orders.UpdateStatus(ctx, order.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.Orders.UpdateStatus(ctx, order.ID, "shipped")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.Orders.UpdateStatus(ctx, order.ID, "completed")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := env.Orders.UpdateStatus(ctx, order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)

	for _, s := range []string{"preparing", "ready", "completed"} {
		got, err = env.Orders.UpdateStatus(ctx, order.ID, s)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(s), got.Status)
	}

	_, err = env.Orders.UpdateStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.Orders.UpdateStatus(ctx, 9999, "preparing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, env.Events.types(), "order_status_changed")
}

func TestUpdateStatus_CancelFromPreparing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	order := placeOrder(t, env, u.ID)

	_, err := env.Orders.UpdateStatus(ctx, order.ID, "preparing")
	require.NoError(t, err)
	got, err := env.Orders.UpdateStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}

func TestDashboard_ActiveOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	first := placeOrder(t, env, u.ID)
	env.Clock.Advance(time.Minute)
	second := placeOrder(t, env, u.ID)

	_, err := env.Orders.UpdateStatus(ctx, first.ID, "cancelled")
	require.NoError(t, err)

	d, err := env.Orders.Dashboard(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, d.Orders, 2)
	assert.Equal(t, second.ID, d.Orders[0].ID)
	require.Len(t, d.ActiveOrders, 1)
	assert.Equal(t, second.ID, d.ActiveOrders[0].ID)
}

func TestListOrders_PendingOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	first := placeOrder(t, env, u.ID)
	placeOrder(t, env, u.ID)
	_, err := env.Orders.UpdateStatus(ctx, first.ID, "preparing")
	require.NoError(t, err)

	all, err := env.Orders.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := env.Orders.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.NotEqual(t, first.ID, pending[0].ID)
}

func TestReceipt_LineTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, env.Repo.DB, testPhone, "pw", false)
	p := testutil.SeedProduct(t, env.Repo.DB, "Latte", "3.50", "coffee")
	testutil.SeedCartItem(t, env.Repo.DB, u.ID, p.ID, 3)
	order, err := env.Orders.Checkout(ctx, u.ID)
	require.NoError(t, err)

	r, err := env.Orders.Receipt(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "Latte", r.Lines[0].Name)
	assert.True(t, r.Lines[0].LineTotal.Equal(decimal.RequireFromString("10.50")))
	assert.True(t, r.Total.Equal(decimal.RequireFromString("10.50")))
	assert.Equal(t, u.ID, r.Order.User.ID)
}
