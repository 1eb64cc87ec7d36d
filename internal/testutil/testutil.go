// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/db"
	"github.com/Skotchmaster/online_cafe/internal/hash"
	"github.com/Skotchmaster/online_cafe/internal/models"
)

// InitTestDB opens a fresh migrated in-memory SQLite database closed at test end.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenAndMigrate(context.Background(), ":memory:", db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func SeedUser(t *testing.T, gdb *gorm.DB, phone, password string, isAdmin bool) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := models.User{
		PhoneNumber:  phone,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: pwHash,
		IsAdmin:      isAdmin,
	}
	require.NoError(t, gdb.Create(&u).Error)
	return &u
}

func SeedProduct(t *testing.T, gdb *gorm.DB, name, price, category string) *models.Product {
	t.Helper()

	p := models.Product{
		Name:     name,
		Price:    models.NewMoney(decimal.RequireFromString(price)),
		Category: category,
		InStock:  true,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return &p
}

func SeedCartItem(t *testing.T, gdb *gorm.DB, userID, productID, quantity uint) *models.CartItem {
	t.Helper()

	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	require.NoError(t, gdb.Create(&item).Error)
	return &item
}
