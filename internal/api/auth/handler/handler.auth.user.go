// Package authhdl xử lý các request đăng ký và đăng nhập.
package authhdl

import (
	"github.com/gofiber/fiber/v3"

	authdto "vid_share/internal/api/auth/dto"
	authsvc "vid_share/internal/api/auth/service"
	basehdl "vid_share/internal/api/base/handler"
	"vid_share/internal/common"
)

// UserHandler xử lý request xác thực người dùng
type UserHandler struct {
	userService *authsvc.UserService
}

// NewUserHandler tạo instance mới của UserHandler
func NewUserHandler(userService *authsvc.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// HandleRegister xử lý đăng ký tài khoản mới
func (h *UserHandler) HandleRegister(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input authdto.RegisterInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
		}
		if err := basehdl.ValidateInput(&input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		user, err := h.userService.Register(c.Context(), &input)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleCreatedResponse(c, fiber.Map{
			"userId":   user.ID.Hex(),
			"username": user.Username,
		}, nil)
	})
}

// HandleLogin xử lý đăng nhập và trả về JWT
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input authdto.LoginInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
		}
		if err := basehdl.ValidateInput(&input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		result, err := h.userService.Login(c.Context(), &input)
		return basehdl.HandleResponse(c, result, err)
	})
}
