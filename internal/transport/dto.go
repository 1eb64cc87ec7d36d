package transport

import "encoding/json"

type RegisterRequest struct {
	Phone string `json:"phone" form:"phone"`
}

type VerifyRequest struct {
	Phone     string `json:"phone"      form:"phone"`
	Code      string `json:"code"       form:"code"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name"  form:"last_name"`
	Password  string `json:"password"   form:"password"`
}

type LoginRequest struct {
	Phone    string `json:"phone"    form:"phone"`
	Password string `json:"password" form:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password"     form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" form:"product_id"`
	Quantity  *int `json:"quantity"   form:"quantity"`
}

type UpdateCartRequest struct {
	ItemID   uint `json:"item_id"  form:"item_id"`
	Quantity int  `json:"quantity" form:"quantity"`
}

// ProductRequest accepts price as a JSON number or a numeric string.
type ProductRequest struct {
	Name        string      `json:"name"        form:"name"`
	Description string      `json:"description" form:"description"`
	Price       json.Number `json:"price"       form:"price"`
	Category    string      `json:"category"    form:"category"`
	InStock     *bool       `json:"in_stock"    form:"in_stock"`
}

type StockRequest struct {
	InStock *bool `json:"in_stock" form:"in_stock"`
}

type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string `json:"message"`
	IsAdmin bool   `json:"is_admin"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FormDescriptor stands in for an HTML form on GET routes.
type FormDescriptor struct {
	Action    string   `json:"action"`
	Method    string   `json:"method"`
	Fields    []string `json:"fields"`
	CSRFToken string   `json:"csrf_token,omitempty"`
}
