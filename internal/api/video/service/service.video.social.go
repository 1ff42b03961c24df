package videosvc

import (
	"context"
	"time"

	"vid_share/internal/api/video/models"
	"vid_share/internal/logger"
	"vid_share/internal/queue"
)

// SocialService áp like/unlike/comment vào record theo chế độ synchronous-apply:
// mutate store ngay trên request path và trả state mới - read path không bao giờ stale.
// Notification job chỉ là fan-out tùy chọn cho consumer hạ nguồn (read-model, activity feed),
// không phải đường áp mutation.
type SocialService struct {
	store      VideoStore
	dispatcher queue.Dispatcher
	notify     bool // Bật fan-out notification job qua cấu hình
}

// NewSocialService tạo reconciler với các collaborator được inject
func NewSocialService(store VideoStore, dispatcher queue.Dispatcher, notify bool) *SocialService {
	return &SocialService{store: store, dispatcher: dispatcher, notify: notify}
}

// hasLike kiểm tra membership của userID trong set likes
func hasLike(v *models.Video, userID string) bool {
	for _, id := range v.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ApplyLike áp trạng thái like mong muốn cho (video, user).
// Record không tồn tại thì short-circuit: không mutate store, không dispatch job.
// Lặp lại call giống hệt là no-op về state VÀ không phát sinh message trùng
// cho consumer hạ nguồn.
func (s *SocialService) ApplyLike(ctx context.Context, videoID, userID string, wantLiked bool) (models.Video, error) {
	record, err := s.store.GetByID(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}

	// Call trùng với state hiện tại: trả state như cũ, không enqueue gì thêm
	if hasLike(&record, userID) == wantLiked {
		return record, nil
	}

	updated, err := s.store.ApplyLike(ctx, videoID, userID, wantLiked)
	if err != nil {
		return models.Video{}, err
	}

	if s.notify {
		payload := queue.LikePayload{VideoID: videoID, UserID: userID, Liked: wantLiked}
		if err := s.dispatcher.Enqueue(ctx, queue.JobLike, payload); err != nil {
			// State đã áp xong - notification lỗi chỉ log, không fail request
			logger.GetErrorLogger().WithError(err).WithField("videoId", videoID).
				Error("Enqueue like notification thất bại")
		}
	}

	return updated, nil
}

// AddComment append một bình luận mới cho video.
// Record không tồn tại thì short-circuit như ApplyLike.
func (s *SocialService) AddComment(ctx context.Context, videoID, userID, text string) (models.Video, error) {
	if _, err := s.store.GetByID(ctx, videoID); err != nil {
		return models.Video{}, err
	}

	comment := models.Comment{
		AuthorID:  userID,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}

	updated, err := s.store.AppendComment(ctx, videoID, comment)
	if err != nil {
		return models.Video{}, err
	}

	if s.notify {
		payload := queue.CommentPayload{
			VideoID:   videoID,
			AuthorID:  userID,
			Text:      text,
			Timestamp: comment.Timestamp,
		}
		if err := s.dispatcher.Enqueue(ctx, queue.JobComment, payload); err != nil {
			logger.GetErrorLogger().WithError(err).WithField("videoId", videoID).
				Error("Enqueue comment notification thất bại")
		}
	}

	return updated, nil
}
