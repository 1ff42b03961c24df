// Package basehdl - chuẩn hóa response envelope và xử lý panic cho các domain handler.
package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"vid_share/internal/common"
	"vid_share/internal/global"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// HandleResponse xử lý và chuẩn hóa response trả về cho client.
// Mọi operation đều trả về envelope thống nhất {success, error?, data?} -
// lỗi store/broker không bao giờ leak nguyên dạng ra ngoài boundary.
func HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) {
			return JSONResponse(c, customErr.StatusCode, fiber.Map{
				"success": false,
				"code":    customErr.Code.Code,
				"error":   customErr.Message,
				"details": customErr.Details,
			})
		}
		// Nếu không phải custom error, trả về internal server error
		return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
			"success": false,
			"code":    common.ErrCodeInternalServer.Code,
			"error":   common.MsgInternalError,
		})
	}

	// Trường hợp thành công
	return JSONResponse(c, common.StatusOK, fiber.Map{
		"success": true,
		"data":    data,
	})
}

// HandleCreatedResponse giống HandleResponse nhưng trả 201 khi thành công
func HandleCreatedResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return HandleResponse(c, nil, err)
	}
	return JSONResponse(c, common.StatusCreated, fiber.Map{
		"success": true,
		"data":    data,
	})
}

// SafeHandler bọc handler với recover để bắt panic và xử lý lỗi an toàn.
// Đảm bảo server luôn trả về response cho client, kể cả khi có panic xảy ra.
func SafeHandler(c fiber.Ctx, handler func() error) error {
	defer func() {
		if r := recover(); r != nil {
			// Log stack trace để debug
			debug.PrintStack()

			_ = HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// ValidateVideoID validate path param videoId theo rule video_id đã đăng ký
func ValidateVideoID(videoID string) error {
	if videoID == "" {
		return common.ErrRequiredField
	}
	if global.Validate == nil {
		global.InitValidator()
	}
	if err := global.Validate.Var(videoID, "video_id"); err != nil {
		return common.ErrInvalidFormat
	}
	return nil
}

// ValidateInput validate struct input với các struct tag (validate, oneof, ...)
func ValidateInput(input interface{}) error {
	if global.Validate == nil {
		global.InitValidator()
	}
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("%s: %v", common.MsgValidationError, err),
			common.StatusBadRequest,
			err,
		)
	}
	return nil
}
