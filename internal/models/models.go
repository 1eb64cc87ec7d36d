package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	PhoneNumber  string    `gorm:"size:17;uniqueIndex;not null"  json:"phone_number"`
	FirstName    string    `gorm:"size:50"                       json:"first_name"`
	LastName     string    `gorm:"size:50"                       json:"last_name"`
	PasswordHash string    `gorm:"size:256;not null"             json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false"        json:"is_admin"`
	CreatedAt    time.Time `                                     json:"created_at"`
	Orders       []Order   `gorm:"foreignKey:UserID"             json:"-"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string          `gorm:"size:100;not null"            json:"name"`
	Description string          `gorm:"type:text"                    json:"description"`
	Price       Money           `gorm:"type:decimal(10,2);not null"  json:"price"`
	Category    string          `gorm:"size:50;index"                json:"category"`
	InStock     bool            `gorm:"not null"                     json:"in_stock"`
	CreatedAt   time.Time       `                                    json:"created_at"`
	UpdatedAt   time.Time       `                                    json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"                        json:"-"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey"                              json:"id"`
	UserID    uint     `gorm:"uniqueIndex:idx_user_product;not null"   json:"user_id"`
	ProductID uint     `gorm:"uniqueIndex:idx_user_product;not null"   json:"product_id"`
	Quantity  uint     `gorm:"not null;default:1;check:quantity>0"     json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID"                    json:"product,omitempty"`
}

type Order struct {
	ID         uint            `gorm:"primaryKey"                       json:"id"`
	UserID     uint            `gorm:"index;not null"                   json:"user_id"`
	CreatedAt  time.Time       `gorm:"index;not null"                   json:"created_at"`
	TotalPrice Money           `gorm:"type:decimal(10,2);not null"      json:"total_price"`
	Status     OrderStatus     `gorm:"size:20;index;not null;default:pending" json:"status"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID"               json:"items,omitempty"`
	User       *User           `gorm:"foreignKey:UserID"                json:"user,omitempty"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                    json:"id"`
	OrderID   uint            `gorm:"index;not null"                json:"order_id"`
	ProductID uint            `gorm:"index;not null"                json:"product_id"`
	Quantity  uint            `gorm:"not null;check:quantity>0"     json:"quantity"`
	Price     Money           `gorm:"type:decimal(10,2);not null"   json:"price"`
	Product   *Product        `gorm:"foreignKey:ProductID"          json:"product,omitempty"`
}

// LineTotal is the unit price captured at purchase times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// VerificationCode is the server-side record of a pending phone registration.
type VerificationCode struct {
	Phone     string    `gorm:"primaryKey;size:17"  json:"phone"`
	CodeHash  string    `gorm:"size:64;not null"    json:"-"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Attempts  int       `gorm:"not null;default:0"  json:"attempts"`
	CreatedAt time.Time `gorm:"not null"            json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"            json:"id"`
	UserID    uint   `gorm:"index;not null"        json:"user_id"`
	Token     string `gorm:"uniqueIndex;not null"  json:"-"`
	JTI       string `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt int64  `gorm:"not null"              json:"expires_at"`
	Revoked   bool   `gorm:"default:false"         json:"revoked"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&VerificationCode{},
		&RefreshToken{},
	}
}
