package videodto

import (
	"vid_share/internal/api/video/models"
)

// UploadInput dữ liệu đầu vào khi upload video (multipart form).
// File và img được đọc trực tiếp từ form, các field còn lại bind vào struct này.
type UploadInput struct {
	Name    string `form:"name" validate:"required,min=1,max=200"`
	OwnerID string `form:"owner" validate:"omitempty,max=64"` // Bỏ qua nếu request đã có token
	RetryID string `form:"retryId" validate:"omitempty,video_id"` // videoId của lần upload partial-failure trước đó
}

// LikeInput dữ liệu đầu vào khi like/unlike
type LikeInput struct {
	UserID string `json:"userId" validate:"omitempty,max=64"` // Bỏ qua nếu request đã có token
}

// CommentInput dữ liệu đầu vào khi bình luận
type CommentInput struct {
	UserID string `json:"userId" validate:"omitempty,max=64"` // Bỏ qua nếu request đã có token
	Text   string `json:"text" validate:"required,min=1,max=2000"`
}

// ResolutionView trạng thái một bản transcode trong view công khai
type ResolutionView struct {
	Status string `json:"status"`
	URI    string `json:"uri,omitempty"`
}

// LikesView tổng hợp like cho view chi tiết - không bao giờ trả về danh sách user id
type LikesView struct {
	Amount  int  `json:"amount"`
	IsLiked bool `json:"isLiked"` // Luôn false nếu request không có identity
}

// DetailView là view chi tiết một video
type DetailView struct {
	VideoID     string                    `json:"videoId"`
	Name        string                    `json:"name"`
	SourceURI   string                    `json:"sourceUri,omitempty"` // Chỉ có khi media đã lưu
	Resolutions map[string]ResolutionView `json:"resolutions"`
	Likes       LikesView                 `json:"likes"`
	Comments    []models.Comment          `json:"comments"`
}

// SummaryView là view rút gọn cho listing.
// Không chứa nội dung comment và không chứa danh sách người like.
type SummaryView struct {
	VideoID      string `json:"videoId"`
	Name         string `json:"name"`
	OwnerID      string `json:"ownerId"`
	ThumbnailURI string `json:"thumbnailUri,omitempty"`
	LikeCount    int    `json:"likeCount"`
	CommentCount int    `json:"commentCount"`
}

// UploadResult trả về sau khi upload thành công
type UploadResult struct {
	VideoID     string   `json:"videoId"`
	Name        string   `json:"name"`
	Resolutions []string `json:"resolutions"` // Các bản transcode đã enqueue
}
