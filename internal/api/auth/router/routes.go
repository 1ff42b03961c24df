// Package router đăng ký các route thuộc domain auth.
package router

import (
	"github.com/gofiber/fiber/v3"

	authhdl "vid_share/internal/api/auth/handler"
	authsvc "vid_share/internal/api/auth/service"
)

// Register đăng ký các route auth lên group v1
func Register(v1 fiber.Router, userService *authsvc.UserService) {
	userHandler := authhdl.NewUserHandler(userService)

	v1.Post("/auth/register", userHandler.HandleRegister)
	v1.Post("/auth/login", userHandler.HandleLogin)
}
