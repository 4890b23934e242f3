package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"    bson:"_id"`
	Email        string `gorm:"uniqueIndex;not null"        json:"email" bson:"email"`
	PasswordHash string `gorm:"column:password;not null"    json:"-"     bson:"password"`
	Role         string `gorm:"not null"                    json:"role"  bson:"role"`
}

type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"                      json:"id"`
	Name        string    `gorm:"column:product_name;not null"                     json:"product_name"`
	Description string    `gorm:"column:product_description;not null"              json:"product_description"`
	Price       float64   `gorm:"not null"                                         json:"price"`
	Tags        []string  `gorm:"column:product_tag;serializer:json;not null"      json:"product_tag"`
	CreatedBy   string    `gorm:"column:created_by;index;not null;type:varchar(36)" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
