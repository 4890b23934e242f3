package transport

import (
	"github.com/Skotchmaster/product_api/internal/models"
	"github.com/Skotchmaster/product_api/internal/util"
)

type RegisterRequest struct {
	Email                string `json:"email"                 validate:"required"`
	Password             string `json:"password"              validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	Role                 string `json:"role"                  validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type CreateProductRequest struct {
	Name        string   `json:"product_name"        validate:"required"`
	Description string   `json:"product_description" validate:"required"`
	Price       *float64 `json:"price"               validate:"required,gte=0"`
	Tags        []string `json:"product_tag"         validate:"required"`
}

type PatchProductRequest struct {
	Name        *string  `json:"product_name"        validate:"omitempty,min=1"`
	Description *string  `json:"product_description" validate:"omitempty,min=1"`
	Price       *float64 `json:"price"               validate:"omitempty,gte=0"`
	Tags        []string `json:"product_tag"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProductListResponse struct {
	Data []models.Product `json:"data"`
	Meta util.PageMeta    `json:"meta"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}
