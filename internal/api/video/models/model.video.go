package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResolutionStatus định nghĩa trạng thái của một bản transcode
const (
	ResolutionStatusPending = "pending" // Đang chờ worker transcode
	ResolutionStatusReady   = "ready"   // Worker đã transcode xong
)

// Resolution là trạng thái của một bản transcode theo label (360, 720, 1080).
// Mỗi entry chuyển pending → ready đúng một lần, do worker ghi lại, không bao giờ bị xóa.
// Entry chỉ gồm (status, uri): redeliver cùng một kết quả ghi lại đúng cùng một giá trị.
type Resolution struct {
	Status string `json:"status" bson:"status"`               // pending hoặc ready
	URI    string `json:"uri,omitempty" bson:"uri,omitempty"` // URI của bản transcode khi ready
}

// Comment là một bình luận trong chuỗi append-only của video.
// Không bao giờ bị sửa hoặc xóa bởi service này.
type Comment struct {
	AuthorID  string `json:"authorId" bson:"authorId"`   // ID người bình luận
	Text      string `json:"text" bson:"text"`           // Nội dung
	Timestamp int64  `json:"timestamp" bson:"timestamp"` // Thời gian tạo (unix milli)
}

// Video đại diện cho một asset đã upload cùng toàn bộ state dẫn xuất.
// Record được tạo đúng một lần bởi ingestion, mutate qua các atomic update,
// và không bao giờ bị xóa bởi service này.
type Video struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID nội bộ của MongoDB

	// ===== IDENTITY =====
	VideoID string `json:"videoId" bson:"videoId"` // Key công khai, unique toàn hệ thống, không bao giờ tái sử dụng
	Name    string `json:"name" bson:"name"`       // Tiêu đề hiển thị, immutable sau khi tạo
	OwnerID string `json:"ownerId" bson:"ownerId"` // ID người upload (hoặc session token ở thế hệ chưa có auth)

	// ===== MEDIA ASSETS =====
	SourceFilename    string `json:"sourceFilename" bson:"sourceFilename"`                           // Tên file gốc đã chuẩn hóa, immutable
	ThumbnailFilename string `json:"thumbnailFilename,omitempty" bson:"thumbnailFilename,omitempty"` // Tên file thumbnail (tùy chọn)
	SourceMD5         string `json:"sourceMd5,omitempty" bson:"sourceMd5,omitempty"`                 // MD5 của nội dung upload, dùng nhận diện asset
	MediaStored       bool   `json:"mediaStored" bson:"mediaStored"`                                 // false = partial failure, retry được phép ghi lại media

	// ===== DERIVED STATE =====
	Resolutions map[string]Resolution `json:"resolutions" bson:"resolutions"` // label → trạng thái transcode
	Likes       []string              `json:"likes" bson:"likes"`             // Set user id đang like (mỗi id xuất hiện tối đa một lần)
	Comments    []Comment             `json:"comments" bson:"comments"`       // Chuỗi bình luận append-only theo thứ tự thời gian

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
