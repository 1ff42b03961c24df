package videosvc

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strings"

	videodto "vid_share/internal/api/video/dto"
	"vid_share/internal/api/video/models"
	"vid_share/internal/common"
	"vid_share/internal/logger"
	"vid_share/internal/queue"
	"vid_share/internal/storage"
)

// Allow-list container format - check trên extension mà client khai báo,
// không sniff nội dung file.
var validVideoExt = map[string]bool{
	".mpeg4":  true,
	".mp4":    true,
	".avi":    true,
	".wmv":    true,
	".mpegps": true,
	".flv":    true,
	".3gpp":   true,
}

var validImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// MediaSaver là phần MediaStore mà ingestion cần (fake được trong test)
type MediaSaver interface {
	Save(videoID, filename string, data []byte) (string, error)
	Exists(videoID, filename string) bool
}

// UploadRequest là một request upload đã đọc xong từ multipart form
type UploadRequest struct {
	Name          string // Tiêu đề hiển thị
	OwnerID       string // Identity người upload
	RetryID       string // videoId của lần upload partial-failure trước, rỗng nếu upload mới
	Filename      string // Tên file client khai báo (chỉ dùng để lấy extension)
	Data          []byte // Nội dung video
	ThumbFilename string // Tên file thumbnail (tùy chọn)
	ThumbData     []byte // Nội dung thumbnail (tùy chọn)
}

// IngestService là pipeline xử lý upload:
// validate → cấp key → persist metadata → lưu media → fan-out convert jobs.
type IngestService struct {
	store       VideoStore
	media       MediaSaver
	dispatcher  queue.Dispatcher
	keygen      KeyGenerator
	resolutions []string
}

// NewIngestService tạo pipeline với các collaborator được inject
func NewIngestService(store VideoStore, media MediaSaver, dispatcher queue.Dispatcher, keygen KeyGenerator, resolutions []string) *IngestService {
	return &IngestService{
		store:       store,
		media:       media,
		dispatcher:  dispatcher,
		keygen:      keygen,
		resolutions: resolutions,
	}
}

// validateUpload check các part bắt buộc và extension allow-list.
// Mọi lỗi ở đây xảy ra TRƯỚC khi có record hay file nào được tạo.
func validateUpload(req *UploadRequest) error {
	if req.Name == "" || req.Filename == "" {
		return common.ErrRequiredField
	}
	if len(req.Data) == 0 {
		return common.ErrRequiredField
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !validVideoExt[ext] {
		return common.ErrUnsupportedMedia
	}

	if req.ThumbFilename != "" {
		thumbExt := strings.ToLower(filepath.Ext(req.ThumbFilename))
		if !validImageExt[thumbExt] {
			return common.ErrUnsupportedMedia
		}
	}

	return nil
}

// Ingest chạy toàn bộ pipeline cho một upload mới hoặc một retry sau partial failure
func (s *IngestService) Ingest(ctx context.Context, req *UploadRequest) (*videodto.UploadResult, error) {
	if err := validateUpload(req); err != nil {
		return nil, err
	}

	// Retry sau partial failure đi đường riêng: tái sử dụng videoId đã cấp,
	// không bao giờ tạo record mồ côi bằng một lần cấp key mới.
	if req.RetryID != "" {
		return s.resumePartialUpload(ctx, req)
	}

	videoID, err := s.keygen.Generate(ctx, req.OwnerID, req.Name)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	sourceFilename := storage.SanitizeFilename(req.Name, ext)

	var thumbFilename string
	if req.ThumbFilename != "" {
		thumbFilename = storage.SanitizeFilename(req.Name+"_thumb", strings.ToLower(filepath.Ext(req.ThumbFilename)))
	}

	sum := md5.Sum(req.Data)
	record := models.Video{
		VideoID:           videoID,
		Name:              req.Name,
		OwnerID:           req.OwnerID,
		SourceFilename:    sourceFilename,
		ThumbnailFilename: thumbFilename,
		SourceMD5:         hex.EncodeToString(sum[:]),
		MediaStored:       false,
		Resolutions:       map[string]models.Resolution{},
		Likes:             []string{},
		Comments:          []models.Comment{},
	}

	// Không có record durable thì không bước nào phía sau được chạy
	if _, err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}

	return s.storeMediaAndDispatch(ctx, &record, req)
}

// resumePartialUpload xử lý retry keyed theo videoId cũ: record đã tồn tại,
// chỉ cần lưu lại media và fan-out jobs
func (s *IngestService) resumePartialUpload(ctx context.Context, req *UploadRequest) (*videodto.UploadResult, error) {
	record, err := s.store.GetByID(ctx, req.RetryID)
	if err != nil {
		return nil, err
	}

	// Chỉ chủ sở hữu record được tiếp tục upload dang dở - biết videoId
	// không đủ quyền ghi đè media của người khác
	if record.OwnerID != req.OwnerID {
		return nil, common.ErrForbidden
	}

	// Media đã lưu từ trước thì retry là no-op thành công
	if record.MediaStored {
		return &videodto.UploadResult{
			VideoID:     record.VideoID,
			Name:        record.Name,
			Resolutions: s.resolutions,
		}, nil
	}

	return s.storeMediaAndDispatch(ctx, &record, req)
}

// storeMediaAndDispatch lưu media gốc (và thumbnail nếu có) rồi enqueue convert jobs
func (s *IngestService) storeMediaAndDispatch(ctx context.Context, record *models.Video, req *UploadRequest) (*videodto.UploadResult, error) {
	if _, err := s.media.Save(record.VideoID, record.SourceFilename, req.Data); err != nil {
		// Partial failure: metadata đã persist nhưng media chưa có trên disk.
		// Trả lỗi riêng biệt kèm retryId để caller upload lại với CÙNG videoId.
		logger.GetErrorLogger().WithError(err).WithField("videoId", record.VideoID).
			Error("Lưu media thất bại sau khi đã persist metadata")
		return nil, common.NewError(
			common.ErrCodeMediaStorage,
			"Lưu file media thất bại, hãy thử upload lại với cùng videoId",
			common.StatusInternalServerError,
			map[string]string{"retryId": record.VideoID},
		)
	}

	// Thumbnail là asset tùy chọn - lỗi lưu thumbnail không chặn pipeline
	if record.ThumbnailFilename != "" && len(req.ThumbData) > 0 {
		if _, err := s.media.Save(record.VideoID, record.ThumbnailFilename, req.ThumbData); err != nil {
			logger.GetAppLogger().WithError(err).WithField("videoId", record.VideoID).
				Warn("Lưu thumbnail thất bại, tiếp tục pipeline")
		}
	}

	// Checksum tính lại từ bytes vừa ghi: retry được phép mang nội dung khác
	// lần đầu, sourceMd5 phải mô tả đúng file đang nằm trên disk
	sum := md5.Sum(req.Data)
	if _, err := s.store.MarkMediaStored(ctx, record.VideoID, hex.EncodeToString(sum[:])); err != nil {
		return nil, err
	}

	// Fan-out một convert job cho mỗi resolution đích.
	// Enqueue lỗi chỉ log, không rollback upload - resolution tương ứng giữ pending,
	// sweep đối chiếu lại là việc của hệ thống ngoài.
	for _, resolution := range s.resolutions {
		payload := queue.ConvertPayload{
			VideoID:        record.VideoID,
			SourceFilename: record.SourceFilename,
			Resolution:     resolution,
		}
		if err := s.dispatcher.Enqueue(ctx, queue.JobConvert, payload); err != nil {
			logger.GetErrorLogger().WithError(err).WithFields(map[string]interface{}{
				"videoId":    record.VideoID,
				"resolution": resolution,
			}).Error("Enqueue convert job thất bại, resolution giữ trạng thái pending")
		}
	}

	return &videodto.UploadResult{
		VideoID:     record.VideoID,
		Name:        record.Name,
		Resolutions: s.resolutions,
	}, nil
}
