// Package videohdl xử lý các request thuộc domain video: upload, listing, chi tiết và social.
package videohdl

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v3"

	basehdl "vid_share/internal/api/base/handler"
	"vid_share/internal/api/middleware"
	videodto "vid_share/internal/api/video/dto"
	videosvc "vid_share/internal/api/video/service"
	"vid_share/internal/common"
)

// VideoHandler xử lý request video, ủy quyền nghiệp vụ cho các service được inject
type VideoHandler struct {
	ingest    *videosvc.IngestService
	social    *videosvc.SocialService
	store     videosvc.VideoStore
	projector *videosvc.Projector
}

// NewVideoHandler tạo instance mới của VideoHandler
func NewVideoHandler(ingest *videosvc.IngestService, social *videosvc.SocialService, store videosvc.VideoStore, projector *videosvc.Projector) *VideoHandler {
	return &VideoHandler{
		ingest:    ingest,
		social:    social,
		store:     store,
		projector: projector,
	}
}

// readFormFile đọc toàn bộ nội dung một file part từ multipart form
func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, common.ErrInvalidFormat
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, common.ErrInvalidFormat
	}
	return data, nil
}

// HandleUpload nhận multipart upload và chạy pipeline ingest
func (h *VideoHandler) HandleUpload(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		input := videodto.UploadInput{
			Name:    c.FormValue("name"),
			OwnerID: c.FormValue("owner"),
			RetryID: c.FormValue("retryId"),
		}
		if err := basehdl.ValidateInput(&input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		// Identity từ token được ưu tiên hơn field owner trong form
		if requester := middleware.RequesterID(c); requester != "" {
			input.OwnerID = requester
		}
		if input.OwnerID == "" {
			return basehdl.HandleResponse(c, nil, common.ErrRequiredField)
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return basehdl.HandleResponse(c, nil, common.ErrRequiredField)
		}
		data, err := readFormFile(fileHeader)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		req := &videosvc.UploadRequest{
			Name:     input.Name,
			OwnerID:  input.OwnerID,
			RetryID:  input.RetryID,
			Filename: fileHeader.Filename,
			Data:     data,
		}

		// Thumbnail là part tùy chọn
		if thumbHeader, err := c.FormFile("img"); err == nil {
			thumbData, err := readFormFile(thumbHeader)
			if err != nil {
				return basehdl.HandleResponse(c, nil, err)
			}
			req.ThumbFilename = thumbHeader.Filename
			req.ThumbData = thumbData
		}

		result, err := h.ingest.Ingest(c.Context(), req)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleCreatedResponse(c, result, nil)
	})
}

// HandleList trả về listing rút gọn của tất cả video
func (h *VideoHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		videos, err := h.store.ListAll(c.Context())
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, h.projector.ListingView(videos), nil)
	})
}

// HandleDetail trả về view chi tiết một video, cờ isLiked theo identity của request
func (h *VideoHandler) HandleDetail(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		videoID := c.Params("videoId")
		if err := basehdl.ValidateVideoID(videoID); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		video, err := h.store.GetByID(c.Context(), videoID)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		view := h.projector.DetailView(&video, middleware.RequesterID(c))
		return basehdl.HandleResponse(c, view, nil)
	})
}

// resolveActor lấy identity thực hiện thao tác social: token trước, body sau
func resolveActor(c fiber.Ctx, bodyUserID string) (string, error) {
	if requester := middleware.RequesterID(c); requester != "" {
		return requester, nil
	}
	if bodyUserID != "" {
		return bodyUserID, nil
	}
	return "", common.ErrRequiredField
}

// handleLikeState xử lý chung cho like và unlike
func (h *VideoHandler) handleLikeState(c fiber.Ctx, wantLiked bool) error {
	return basehdl.SafeHandler(c, func() error {
		videoID := c.Params("videoId")
		if err := basehdl.ValidateVideoID(videoID); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		var input videodto.LikeInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
		}
		userID, err := resolveActor(c, input.UserID)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		video, err := h.social.ApplyLike(c.Context(), videoID, userID, wantLiked)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, h.projector.DetailView(&video, userID), nil)
	})
}

// HandleLike đánh dấu người dùng đã like video (idempotent)
func (h *VideoHandler) HandleLike(c fiber.Ctx) error {
	return h.handleLikeState(c, true)
}

// HandleUnlike gỡ like của người dùng khỏi video (idempotent)
func (h *VideoHandler) HandleUnlike(c fiber.Ctx) error {
	return h.handleLikeState(c, false)
}

// HandleComment thêm một bình luận vào video
func (h *VideoHandler) HandleComment(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		videoID := c.Params("videoId")
		if err := basehdl.ValidateVideoID(videoID); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		var input videodto.CommentInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
		}
		if err := basehdl.ValidateInput(&input); err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		userID, err := resolveActor(c, input.UserID)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		video, err := h.social.AddComment(c.Context(), videoID, userID, input.Text)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, h.projector.DetailView(&video, userID), nil)
	})
}
