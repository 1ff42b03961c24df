// Package router lắp ráp toàn bộ HTTP surface: khởi tạo service theo dependency
// injection rồi đăng ký route của từng domain lên group /api/v1.
package router

import (
	"github.com/gofiber/fiber/v3"

	"vid_share/config"
	authrouter "vid_share/internal/api/auth/router"
	authsvc "vid_share/internal/api/auth/service"
	videohdl "vid_share/internal/api/video/handler"
	videorouter "vid_share/internal/api/video/router"
	videosvc "vid_share/internal/api/video/service"
	"vid_share/internal/database"
	"vid_share/internal/global"
	"vid_share/internal/queue"
	"vid_share/internal/storage"
)

// SetupRoutes khởi tạo các service từ config + collections và đăng ký mọi route.
// Tất cả dependency đi qua constructor, không có service nào đọc biến global.
func SetupRoutes(app *fiber.App, cfg *config.Configuration, cols *database.Collections) error {
	global.InitValidator()

	videoService := videosvc.NewVideoService(cols.Videos)
	userService := authsvc.NewUserService(cols.Users, cfg.JwtSecret)

	mediaStore, err := storage.NewMediaStore(cfg.MediaRoot)
	if err != nil {
		return err
	}

	dispatcher := queue.NewAmqpDispatcher(cfg.AMQP_URI, cfg.AMQPTimeout())

	keygen, err := videosvc.NewKeyGenerator(cfg, videoService.IDExists)
	if err != nil {
		return err
	}

	ingestService := videosvc.NewIngestService(videoService, mediaStore, dispatcher, keygen, cfg.Resolutions())
	socialService := videosvc.NewSocialService(videoService, dispatcher, cfg.NotifyOnSocial)
	projector := videosvc.NewProjector(cfg.MediaBaseURL)

	videoHandler := videohdl.NewVideoHandler(ingestService, socialService, videoService, projector)

	v1 := app.Group("/api/v1")
	v1.Get("/system/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"status": "ok"}})
	})

	authrouter.Register(v1, userService)
	videorouter.Register(v1, videoHandler, userService)

	return nil
}
