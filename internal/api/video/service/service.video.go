// Package videosvc chứa nghiệp vụ video: store adapter, cấp phát key,
// ingestion pipeline, social reconciler và status projector.
package videosvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "vid_share/internal/api/base/service"
	"vid_share/internal/api/video/models"
	"vid_share/internal/common"
)

// VideoStore là view của nghiệp vụ lên collection video.
// Ingestion/reconciler/handler chỉ phụ thuộc interface này - test fake được,
// và mọi mutation đều là MỘT atomic update phía store.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	GetByID(ctx context.Context, videoID string) (models.Video, error)
	ListAll(ctx context.Context) ([]models.Video, error)
	ApplyLike(ctx context.Context, videoID, userID string, wantLiked bool) (models.Video, error)
	AppendComment(ctx context.Context, videoID string, comment models.Comment) (models.Video, error)
	MarkResolutionReady(ctx context.Context, videoID, resolution, uri string) (models.Video, error)
	MarkMediaStored(ctx context.Context, videoID, sourceMD5 string) (models.Video, error)
	IDExists(ctx context.Context, videoID string) (bool, error)
}

// VideoService là store adapter trên MongoDB, triển khai VideoStore
type VideoService struct {
	*basesvc.BaseServiceMongoImpl[models.Video]
}

// NewVideoService tạo VideoService trên collection được inject
func NewVideoService(collection *mongo.Collection) *VideoService {
	return &VideoService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Video](collection),
	}
}

// byVideoID là filter chuẩn theo key công khai
func byVideoID(videoID string) bson.M {
	return bson.M{"videoId": videoID}
}

// Create insert record mới. videoId đã tồn tại là vi phạm bất biến uniqueness
// (không được xảy ra với keygen đúng) - báo lỗi consistency, không bao giờ ghi đè.
func (s *VideoService) Create(ctx context.Context, video models.Video) (models.Video, error) {
	exists, err := s.IDExists(ctx, video.VideoID)
	if err != nil {
		return models.Video{}, err
	}
	if exists {
		return models.Video{}, common.ErrDuplicateVideoID
	}

	created, err := s.InsertOne(ctx, video)
	if err != nil {
		// Unique index trên videoId bắt được race giữa check và insert
		if errors.Is(err, common.ErrDuplicate) {
			return models.Video{}, common.ErrDuplicateVideoID
		}
		return models.Video{}, err
	}
	return created, nil
}

// GetByID tìm record theo videoId, trả ErrNotFound nếu không tồn tại
func (s *VideoService) GetByID(ctx context.Context, videoID string) (models.Video, error) {
	return s.FindOne(ctx, byVideoID(videoID), nil)
}

// ListAll trả về toàn bộ record theo thứ tự insert.
// Mỗi call mở một cursor mới - không giữ cursor sống giữa các lần gọi.
func (s *VideoService) ListAll(ctx context.Context) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return s.Find(ctx, bson.D{}, opts)
}

// buildLikeUpdate dựng update document cho thao tác like/unlike.
// $addToSet/$pull là idempotent sẵn ở tầng MongoDB: thêm id đã có hoặc gỡ id
// không có đều là no-op, không phải lỗi.
func buildLikeUpdate(userID string, wantLiked bool) *basesvc.UpdateData {
	if wantLiked {
		return &basesvc.UpdateData{
			AddToSet: map[string]interface{}{"likes": userID},
		}
	}
	return &basesvc.UpdateData{
		Pull: map[string]interface{}{"likes": userID},
	}
}

// ApplyLike toggle membership của userID trong set likes, atomic một update
func (s *VideoService) ApplyLike(ctx context.Context, videoID, userID string, wantLiked bool) (models.Video, error) {
	return s.FindOneAndUpdate(ctx, byVideoID(videoID), buildLikeUpdate(userID, wantLiked), nil)
}

// buildCommentUpdate dựng update document append một comment
func buildCommentUpdate(comment models.Comment) *basesvc.UpdateData {
	return &basesvc.UpdateData{
		Push: map[string]interface{}{"comments": comment},
	}
}

// AppendComment append comment vào chuỗi append-only.
// $push là một atomic operation phía store - hai comment đồng thời đều sống sót,
// không có read-modify-write làm rơi comment.
func (s *VideoService) AppendComment(ctx context.Context, videoID string, comment models.Comment) (models.Video, error) {
	return s.FindOneAndUpdate(ctx, byVideoID(videoID), buildCommentUpdate(comment), nil)
}

// buildResolutionUpdate dựng update document đánh dấu một resolution đã ready.
// Giá trị ghi xuống chỉ phụ thuộc (status, uri): queue kết quả là at-least-once,
// redeliver cùng một kết quả ghi lại đúng cùng một giá trị (idempotent convergence).
// URI khác thì last-write-wins vì mỗi resolution chỉ có đúng một worker sở hữu.
func buildResolutionUpdate(resolution, uri string) *basesvc.UpdateData {
	field := fmt.Sprintf("resolutions.%s", resolution)
	return &basesvc.UpdateData{
		Set: map[string]interface{}{
			field: models.Resolution{
				Status: models.ResolutionStatusReady,
				URI:    uri,
			},
		},
	}
}

// MarkResolutionReady đánh dấu một bản transcode đã sẵn sàng (worker gọi về)
func (s *VideoService) MarkResolutionReady(ctx context.Context, videoID, resolution, uri string) (models.Video, error) {
	return s.FindOneAndUpdate(ctx, byVideoID(videoID), buildResolutionUpdate(resolution, uri), nil)
}

// MarkMediaStored đánh dấu media gốc đã lưu thành công trên disk.
// mediaStored=false là trạng thái partial-failure cho phép retry cùng videoId.
// sourceMd5 được ghi cùng lúc để checksum luôn mô tả đúng bytes thực sự nằm trên disk,
// kể cả khi retry mang nội dung khác lần upload đầu.
func (s *VideoService) MarkMediaStored(ctx context.Context, videoID, sourceMD5 string) (models.Video, error) {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"mediaStored": true,
			"sourceMd5":   sourceMD5,
		},
	}
	return s.FindOneAndUpdate(ctx, byVideoID(videoID), update, nil)
}

// IDExists kiểm tra videoId đã được cấp phát chưa (keygen dùng làm uniqueness check)
func (s *VideoService) IDExists(ctx context.Context, videoID string) (bool, error) {
	return s.DocumentExists(ctx, byVideoID(videoID))
}
