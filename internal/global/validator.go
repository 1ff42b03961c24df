package global

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validate là instance validator dùng chung cho toàn bộ handler.
// validator.Validate an toàn cho concurrent use nên chỉ cần một instance.
var Validate *validator.Validate

// videoIDPattern khớp với key 6 ký tự chữ + số hoặc chuỗi hex md5 (strategy hash)
var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{6,32}$`)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("video_id", validateVideoID)
	_ = Validate.RegisterValidation("resolution_label", validateResolutionLabel)
}

// validateVideoID kiểm tra format của videoId
func validateVideoID(fl validator.FieldLevel) bool {
	return videoIDPattern.MatchString(fl.Field().String())
}

// validateResolutionLabel kiểm tra label resolution chỉ gồm chữ số (360, 720, 1080)
func validateResolutionLabel(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
