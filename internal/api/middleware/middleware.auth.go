// Package middleware - xác thực JWT cho các route cần định danh người dùng.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	basehdl "vid_share/internal/api/base/handler"
	"vid_share/internal/common"
	"vid_share/internal/logger"
)

// TokenParser xác thực chuỗi token và trả về userId chứa trong claims
type TokenParser interface {
	ParseUserID(tokenString string) (string, error)
}

// extractBearer lấy token từ header Authorization dạng "Bearer <token>"
func extractBearer(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", common.ErrTokenMissing
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", common.ErrTokenInvalid
	}
	return parts[1], nil
}

// RequireAuth bắt buộc request phải có JWT hợp lệ.
// Sau khi xác thực, userId được lưu vào c.Locals("user_id") cho handler phía sau.
func RequireAuth(parser TokenParser) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := extractBearer(c)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("Request thiếu hoặc sai định dạng Authorization header")
			return basehdl.HandleResponse(c, nil, err)
		}

		userID, err := parser.ParseUserID(token)
		if err != nil {
			return basehdl.HandleResponse(c, nil, common.ErrTokenInvalid)
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// OptionalAuth xác thực JWT nếu có, nhưng không chặn request thiếu token.
// Dùng cho các route đọc công khai mà response thay đổi theo định danh (ví dụ cờ isLiked).
func OptionalAuth(parser TokenParser) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := extractBearer(c)
		if err != nil {
			return c.Next()
		}
		if userID, err := parser.ParseUserID(token); err == nil {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}
}

// RequesterID đọc định danh đã xác thực từ context, trả về chuỗi rỗng nếu chưa đăng nhập
func RequesterID(c fiber.Ctx) string {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
