package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vid_share/config"
	"vid_share/internal/api/router"
	videosvc "vid_share/internal/api/video/service"
	"vid_share/internal/database"
	"vid_share/internal/logger"
	"vid_share/internal/worker"
)

// initLogger khởi tạo logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

func main() {
	initLogger()
	log := logger.GetAppLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Lỗi đọc cấu hình: %v", err)
	}

	client, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Lỗi kết nối MongoDB: %v", err)
	}
	defer database.Close(client)

	cols, err := database.EnsureDatabaseAndCollections(client, cfg)
	if err != nil {
		log.Fatalf("Lỗi khởi tạo collections: %v", err)
	}

	app := InitFiberApp(cfg)
	if err := router.SetupRoutes(app, cfg, cols); err != nil {
		log.Fatalf("Lỗi khởi tạo routes: %v", err)
	}

	// Consumer kết quả transcode chạy nền, dừng cùng server qua context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resultConsumer := worker.NewResultConsumer(cfg.AMQP_URI, videosvc.NewVideoService(cols.Videos))
	go resultConsumer.Run(ctx)
	log.Info("Result consumer started")

	// Shutdown khi nhận SIGINT/SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		log.Infof("Nhận signal %v, đang shutdown", s)
		cancel()
		_ = app.Shutdown()
	}()

	log.WithField("address", cfg.Address).Info("Starting Fiber server")
	if err := app.Listen(cfg.Address); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	log.Info("Server stopped")
}
