package videosvc

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"vid_share/config"
	"vid_share/internal/common"
	"vid_share/internal/logger"
)

// keyCharset là bảng ký tự cho strategy random: chữ hoa, chữ thường, chữ số (62 ký hiệu)
const keyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// warnAfterAttempts: vượt ngưỡng này thì log cảnh báo - collision ở độ dài 6
// trên 62 ký hiệu gần như không xảy ra, lặp lại nhiều lần là tín hiệu bất thường
const warnAfterAttempts = 3

// ExistsFunc kiểm tra một key candidate đã được cấp phát chưa
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// KeyGenerator cấp phát videoId. Mỗi deployment chọn đúng MỘT strategy qua cấu hình,
// không trộn hai strategy trong cùng hệ thống.
type KeyGenerator interface {
	Generate(ctx context.Context, ownerID, name string) (string, error)
}

// RandomKeyGenerator draw key ngẫu nhiên độ dài cố định rồi check uniqueness với store.
// Đây là uniqueness xác suất, không phải đảm bảo cryptographic: với key 6 ký tự trên
// 62 ký hiệu, xác suất trùng là không đáng kể nhưng vẫn được check và redraw.
// Vòng retry có chặn trên: hết maxAttempts thì trả lỗi transient (GaveUp) thay vì treo.
type RandomKeyGenerator struct {
	exists      ExistsFunc
	length      int
	maxAttempts int
}

// NewRandomKeyGenerator tạo generator với tham số từ cấu hình
func NewRandomKeyGenerator(exists ExistsFunc, length, maxAttempts int) *RandomKeyGenerator {
	if length <= 0 {
		length = 6
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &RandomKeyGenerator{exists: exists, length: length, maxAttempts: maxAttempts}
}

// randomKey draw một candidate từ nguồn random uniform
func (g *RandomKeyGenerator) randomKey() string {
	b := make([]byte, g.length)
	for i := range b {
		b[i] = keyCharset[rand.IntN(len(keyCharset))]
	}
	return string(b)
}

// Generate cấp phát key mới, redraw khi trùng, bỏ cuộc sau maxAttempts
func (g *RandomKeyGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		key := g.randomKey()

		exists, err := g.exists(ctx, key)
		if err != nil {
			// Store không truy cập được là lỗi transient - caller retry cả request ingestion
			return "", err
		}
		if !exists {
			return key, nil
		}

		if attempt >= warnAfterAttempts {
			logger.GetAppLogger().WithField("attempt", attempt).
				Warn("Cấp phát videoId bị trùng lặp nhiều lần liên tiếp")
		}
	}

	logger.GetErrorLogger().WithField("maxAttempts", g.maxAttempts).
		Error("Cấp phát videoId thất bại sau số lần thử tối đa")
	return "", common.ErrIDExhausted
}

// HashKeyGenerator derive key từ md5(ownerID, name, thời điểm hiện tại).
// Strategy này bỏ qua round-trip check tồn tại, đổi lại uniqueness yếu hơn:
// hai request cùng owner+name rơi vào cùng một nanosecond sẽ trùng key.
// Chế độ này được chấp nhận có chủ đích cho deployment ưu tiên latency.
type HashKeyGenerator struct {
	now func() time.Time // inject được trong test
}

// NewHashKeyGenerator tạo generator với đồng hồ hệ thống
func NewHashKeyGenerator() *HashKeyGenerator {
	return &HashKeyGenerator{now: time.Now}
}

// Generate derive key một chiều từ (ownerID, name, now)
func (g *HashKeyGenerator) Generate(_ context.Context, ownerID, name string) (string, error) {
	input := ownerID + "|" + name + "|" + strconv.FormatInt(g.now().UnixNano(), 10)
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:]), nil
}

// NewKeyGenerator chọn strategy theo cấu hình deployment
func NewKeyGenerator(cfg *config.Configuration, exists ExistsFunc) (KeyGenerator, error) {
	switch cfg.KeygenStrategy {
	case "random", "":
		return NewRandomKeyGenerator(exists, cfg.KeyLength, cfg.KeyMaxAttempts), nil
	case "hash":
		return NewHashKeyGenerator(), nil
	default:
		return nil, fmt.Errorf("keygen strategy không hợp lệ: %s", cfg.KeygenStrategy)
	}
}
