// Package queue định nghĩa Job Dispatcher: serialize và bàn giao các work unit
// (transcode, like, comment) cho message broker bên ngoài.
package queue

import "context"

// JobKind phân loại work unit
type JobKind string

const (
	JobConvert JobKind = "convert" // Transcode một video sang một resolution đích
	JobLike    JobKind = "like"    // Thông báo thay đổi trạng thái like cho consumer hạ nguồn
	JobComment JobKind = "comment" // Thông báo bình luận mới cho consumer hạ nguồn
)

// ConvertPayload là body của một convert job: một job cho mỗi cặp (video, resolution)
type ConvertPayload struct {
	VideoID        string `json:"videoId"`
	SourceFilename string `json:"sourceFilename"`
	Resolution     string `json:"resolution"`
}

// LikePayload là body của một like job
type LikePayload struct {
	VideoID string `json:"videoId"`
	UserID  string `json:"userId"`
	Liked   bool   `json:"liked"` // Trạng thái mới, không phải toggle
}

// CommentPayload là body của một comment job
type CommentPayload struct {
	VideoID   string `json:"videoId"`
	AuthorID  string `json:"authorId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// ResultPayload là body worker gửi về khi transcode xong một resolution
type ResultPayload struct {
	VideoID    string `json:"videoId"`
	Resolution string `json:"resolution"`
	URI        string `json:"uri"`
}

// Envelope là format message trên wire
type Envelope struct {
	Kind    JobKind     `json:"kind"`
	Payload interface{} `json:"payload"`
}

// Dispatcher bàn giao job cho broker. Delivery là at-least-once từ phía broker;
// dispatcher chỉ đảm bảo tối đa một lần publish mỗi call - caller cần at-least-once
// end-to-end thì retry khi nhận lỗi transient.
type Dispatcher interface {
	Enqueue(ctx context.Context, kind JobKind, payload interface{}) error
}

// QueueName trả về tên queue durable cho một loại job
func QueueName(kind JobKind) string {
	switch kind {
	case JobConvert:
		return "video.convert"
	case JobLike:
		return "video.like"
	case JobComment:
		return "video.comment"
	default:
		return "video.unknown"
	}
}

// ResultQueueName là queue worker dùng để báo kết quả transcode về
const ResultQueueName = "video.convert.result"
