package videosvc

import (
	"strings"

	videodto "vid_share/internal/api/video/dto"
	"vid_share/internal/api/video/models"
)

// Projector dựng view công khai từ VideoRecord.
// URI media luôn derive từ base URL cấu hình + videoId + filename, không lưu
// verbatim trong record - đổi base URL không cần migrate dữ liệu.
type Projector struct {
	baseURL string
}

// NewProjector tạo projector với base URL từ cấu hình
func NewProjector(baseURL string) *Projector {
	return &Projector{baseURL: strings.TrimRight(baseURL, "/")}
}

// mediaURI derive URI public cho một file trong thư mục của video
func (p *Projector) mediaURI(videoID, filename string) string {
	if filename == "" {
		return ""
	}
	return p.baseURL + "/" + videoID + "/" + filename
}

// DetailView dựng view chi tiết một video.
// requesterID rỗng (không có identity) thì isLiked luôn false.
func (p *Projector) DetailView(v *models.Video, requesterID string) videodto.DetailView {
	resolutions := make(map[string]videodto.ResolutionView, len(v.Resolutions))
	for label, r := range v.Resolutions {
		resolutions[label] = videodto.ResolutionView{
			Status: r.Status,
			URI:    r.URI,
		}
	}

	isLiked := false
	if requesterID != "" {
		isLiked = hasLike(v, requesterID)
	}

	sourceURI := ""
	if v.MediaStored {
		sourceURI = p.mediaURI(v.VideoID, v.SourceFilename)
	}

	comments := v.Comments
	if comments == nil {
		comments = []models.Comment{}
	}

	return videodto.DetailView{
		VideoID:     v.VideoID,
		Name:        v.Name,
		SourceURI:   sourceURI,
		Resolutions: resolutions,
		Likes: videodto.LikesView{
			Amount:  len(v.Likes),
			IsLiked: isLiked,
		},
		Comments: comments,
	}
}

// SummaryView dựng view rút gọn cho listing: chỉ số đếm, không leak
// danh sách người like hay nội dung comment.
func (p *Projector) SummaryView(v *models.Video) videodto.SummaryView {
	return videodto.SummaryView{
		VideoID:      v.VideoID,
		Name:         v.Name,
		OwnerID:      v.OwnerID,
		ThumbnailURI: p.mediaURI(v.VideoID, v.ThumbnailFilename),
		LikeCount:    len(v.Likes),
		CommentCount: len(v.Comments),
	}
}

// ListingView dựng listing cho một dãy record theo thứ tự đã nhận
func (p *Projector) ListingView(videos []models.Video) []videodto.SummaryView {
	out := make([]videodto.SummaryView, 0, len(videos))
	for i := range videos {
		out = append(out, p.SummaryView(&videos[i]))
	}
	return out
}
