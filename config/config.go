package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Struct này được inject vào từng component khi khởi tạo - không dùng biến global.
type Configuration struct {
	Address   string `env:"ADDRESS" envDefault:":8080"`  // Địa chỉ server
	JwtSecret string `env:"JWT_SECRET,required"`         // Bí mật ký JWT

	// MongoDB
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"vid_share"` // Tên cơ sở dữ liệu

	// Message broker (RabbitMQ)
	AMQP_URI            string `env:"AMQP_URI,required"`              // URL kết nối broker
	AMQP_TimeoutSeconds int    `env:"AMQP_TIMEOUT" envDefault:"5"`    // Timeout cho một chu kỳ connect+publish (giây)

	// Media storage
	MediaRoot    string `env:"MEDIA_ROOT" envDefault:"./videos"`                      // Thư mục gốc chứa file media
	MediaBaseURL string `env:"MEDIA_BASE_URL" envDefault:"http://localhost:8080/media"` // Base URL để derive URI public

	// Transcode
	TargetResolutions string `env:"TARGET_RESOLUTIONS" envDefault:"360,720,1080"` // Các resolution cần transcode, phân cách bởi dấu phẩy

	// Cấp phát videoId
	KeygenStrategy string `env:"KEYGEN_STRATEGY" envDefault:"random"` // random | hash (chọn một, không trộn)
	KeyLength      int    `env:"KEY_LENGTH" envDefault:"6"`           // Độ dài key với strategy random
	KeyMaxAttempts int    `env:"KEY_MAX_ATTEMPTS" envDefault:"10"`    // Số lần redraw tối đa khi trùng key

	// Social
	NotifyOnSocial bool `env:"NOTIFY_ON_SOCIAL" envDefault:"false"` // Fan-out notification job khi like/comment

	// CORS
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials

	// Rate limiting
	RateLimit_Max     int  `env:"RATE_LIMIT_MAX" envDefault:"100"`      // Số request tối đa trong window (0 = disable)
	RateLimit_Window  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`    // Thời gian window (giây)
	RateLimit_Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"` // Bật/tắt rate limiting
}

// Resolutions trả về danh sách resolution label đã parse từ cấu hình
func (c *Configuration) Resolutions() []string {
	parts := strings.Split(c.TargetResolutions, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AMQPTimeout trả về timeout cho một chu kỳ broker dưới dạng time.Duration
func (c *Configuration) AMQPTimeout() time.Duration {
	return time.Duration(c.AMQP_TimeoutSeconds) * time.Second
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	environ := os.Getenv("GO_ENV")
	if environ == "" {
		environ = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ thư mục hiện tại
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", environ))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env (nếu tìm thấy) và environment variables
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// File env là tùy chọn - environment variables có thể đã được set sẵn
			fmt.Printf("Không load được file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("lỗi khi parse config: %w", err)
	}

	return &cfg, nil
}
