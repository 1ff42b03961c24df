// Package models - model người dùng (User) thuộc domain auth.
package models

import (
	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User định nghĩa mô hình người dùng
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"` // Unique, dùng làm identity đăng nhập
	Password  string             `json:"-" bson:"password"`        // Bcrypt hash, không bao giờ serialize ra ngoài
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}

// JwtToken chứa data được mã hóa trong JWT token.
type JwtToken struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}
