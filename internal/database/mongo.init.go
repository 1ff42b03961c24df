package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vid_share/config"
	"vid_share/internal/logger"
)

// Tên các collection của ứng dụng
const (
	ColVideos = "videos"
	ColUsers  = "users"
)

// Collections gom các collection đã khởi tạo để inject vào service layer.
// Thay thế cho registry toàn cục: component nào cần collection nào thì nhận qua constructor.
type Collections struct {
	Videos *mongo.Collection
	Users  *mongo.Collection
}

// EnsureDatabaseAndCollections đảm bảo database, collections và indexes cần thiết tồn tại,
// sau đó trả về struct Collections để inject xuống các service.
func EnsureDatabaseAndCollections(client *mongo.Client, cfg *config.Configuration) (*Collections, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(cfg.MongoDB_DBName)

	collList, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	existing := make(map[string]bool, len(collList))
	for _, name := range collList {
		existing[name] = true
	}

	for _, name := range []string{ColVideos, ColUsers} {
		if existing[name] {
			continue
		}
		logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", name)
		if err := db.CreateCollection(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	cols := &Collections{
		Videos: db.Collection(ColVideos),
		Users:  db.Collection(ColUsers),
	}

	if err := ensureIndexes(ctx, cols); err != nil {
		return nil, err
	}

	logger.GetAppLogger().Infof("Database and collections are ensured in database: %s", cfg.MongoDB_DBName)
	return cols, nil
}

// ensureIndexes tạo các index bắt buộc.
// videoId unique là chốt chặn cuối cùng cho bất biến uniqueness của identifier:
// kể cả khi hai request cùng cấp phát một key, insert thứ hai sẽ fail với duplicate key.
func ensureIndexes(ctx context.Context, cols *Collections) error {
	videoIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "videoId", Value: 1}},
			Options: options.Index().SetName("videoId_unique").SetUnique(true),
		},
		{
			// Phục vụ listing theo thứ tự insert
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("createdAt_single"),
		},
	}
	if _, err := cols.Videos.Indexes().CreateMany(ctx, videoIndexes); err != nil {
		return fmt.Errorf("không thể tạo index cho collection videos: %w", err)
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_unique").SetUnique(true),
		},
	}
	if _, err := cols.Users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("không thể tạo index cho collection users: %w", err)
	}

	return nil
}
