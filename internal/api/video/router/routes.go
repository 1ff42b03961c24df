// Package router đăng ký các route thuộc domain video.
package router

import (
	"github.com/gofiber/fiber/v3"

	"vid_share/internal/api/middleware"
	videohdl "vid_share/internal/api/video/handler"
)

// Register đăng ký các route video lên group v1.
// Middleware phải gắn qua group.Use - truyền trực tiếp vào route không chạy trên Fiber v3.
func Register(v1 fiber.Router, handler *videohdl.VideoHandler, parser middleware.TokenParser) {
	// Các route đọc và upload chấp nhận cả request không đăng nhập,
	// identity (nếu có) chỉ làm giàu response và ưu tiên hơn field trong body.
	public := v1.Group("/videos")
	public.Use(middleware.OptionalAuth(parser))
	public.Post("/upload", handler.HandleUpload)
	public.Get("/", handler.HandleList)
	public.Get("/:videoId", handler.HandleDetail)
	public.Post("/:videoId/like", handler.HandleLike)
	public.Post("/:videoId/unlike", handler.HandleUnlike)
	public.Put("/:videoId/comment", handler.HandleComment)
}
