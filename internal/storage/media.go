// Package storage lưu file media gốc trên filesystem, partition theo videoId.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vid_share/internal/common"
)

// MediaStore ghi media gốc dưới <root>/<videoId>/.
// Mỗi video một thư mục riêng nên các upload đồng thời không bao giờ tranh chấp path.
type MediaStore struct {
	root string // Thư mục gốc chứa media
}

// NewMediaStore tạo MediaStore với thư mục gốc từ cấu hình
func NewMediaStore(root string) (*MediaStore, error) {
	if root == "" {
		return nil, fmt.Errorf("media root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", root, err)
	}
	return &MediaStore{root: root}, nil
}

// Root trả về thư mục gốc
func (m *MediaStore) Root() string {
	return m.root
}

// SanitizeFilename derive tên file lưu trữ từ tên hiển thị do người dùng cung cấp
// cộng với extension gốc - KHÔNG dùng raw filename của client, tránh path traversal
// và ký tự không hợp lệ.
func SanitizeFilename(displayName, ext string) string {
	var b strings.Builder
	for _, r := range displayName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "media"
	}
	// Extension đã được validate ở tầng ingestion, chỉ chuẩn hóa lowercase
	return name + strings.ToLower(ext)
}

// Save ghi data vào <root>/<videoId>/<filename> và trả về filename đã lưu.
// Thư mục đã tồn tại từ lần thử trước là trạng thái hợp lệ - retry của một
// partial failure không được fail chỉ vì MkdirAll.
func (m *MediaStore) Save(videoID, filename string, data []byte) (string, error) {
	dir := filepath.Join(m.root, videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.NewError(
			common.ErrCodeMediaStorage,
			fmt.Sprintf("Không tạo được thư mục media cho video %s", videoID),
			common.StatusInternalServerError,
			err,
		)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", common.ErrMediaStore
	}

	return filename, nil
}

// Exists kiểm tra file media đã tồn tại chưa (dùng cho retry sau partial failure)
func (m *MediaStore) Exists(videoID, filename string) bool {
	_, err := os.Stat(filepath.Join(m.root, videoID, filename))
	return err == nil
}
