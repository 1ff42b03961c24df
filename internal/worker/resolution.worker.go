// Package worker tiêu thụ kết quả transcode từ message broker và chiếu
// trạng thái resolution tương ứng vào store.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"vid_share/internal/api/video/models"
	"vid_share/internal/common"
	"vid_share/internal/logger"
	"vid_share/internal/queue"
)

// reconnectDelay thời gian chờ trước khi thử kết nối lại broker
const reconnectDelay = 5 * time.Second

// ResolutionStore là phần store mà worker cần
type ResolutionStore interface {
	MarkResolutionReady(ctx context.Context, videoID, resolution, uri string) (models.Video, error)
}

// ResultConsumer lắng nghe queue kết quả transcode và cập nhật trạng thái resolution.
// Mỗi message hợp lệ đánh dấu một cặp (video, resolution) chuyển sang ready.
type ResultConsumer struct {
	uri   string
	store ResolutionStore
	log   *logrus.Logger
}

// NewResultConsumer tạo consumer với store được inject
func NewResultConsumer(uri string, store ResolutionStore) *ResultConsumer {
	return &ResultConsumer{
		uri:   uri,
		store: store,
		log:   logger.GetWorkerLogger(),
	}
}

// Run chạy vòng lặp consume cho đến khi context bị cancel.
// Mất kết nối broker thì chờ rồi kết nối lại, không làm sập process.
func (w *ResultConsumer) Run(ctx context.Context) {
	for {
		if err := w.consumeOnce(ctx); err != nil {
			w.log.WithError(err).Warn("Mất kết nối broker, sẽ thử kết nối lại")
		}

		select {
		case <-ctx.Done():
			w.log.Info("Result consumer dừng theo yêu cầu")
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// consumeOnce mở một connection, consume cho đến khi channel đóng hoặc context cancel
func (w *ResultConsumer) consumeOnce(ctx context.Context) error {
	conn, err := amqp.Dial(w.uri)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue.ResultQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	// Manual ack: message chỉ rời queue sau khi store đã ghi nhận trạng thái
	deliveries, err := ch.Consume(queue.ResultQueueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.log.WithField("queue", queue.ResultQueueName).Info("Đang lắng nghe kết quả transcode")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel đã đóng")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery xử lý một message kết quả: parse, cập nhật store, ack/nack
func (w *ResultConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var payload queue.ResultPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.log.WithError(err).Error("Message kết quả không parse được, loại bỏ")
		_ = d.Nack(false, false)
		return
	}
	if payload.VideoID == "" || payload.Resolution == "" {
		w.log.WithField("body", string(d.Body)).Error("Message kết quả thiếu videoId hoặc resolution, loại bỏ")
		_ = d.Nack(false, false)
		return
	}

	_, err := w.store.MarkResolutionReady(ctx, payload.VideoID, payload.Resolution, payload.URI)
	if err != nil {
		// Video không tồn tại thì requeue vô nghĩa, loại bỏ message
		if errors.Is(err, common.ErrNotFound) {
			w.log.WithFields(logrus.Fields{
				"videoId":    payload.VideoID,
				"resolution": payload.Resolution,
			}).Warn("Kết quả transcode cho video không tồn tại, loại bỏ")
			_ = d.Nack(false, false)
			return
		}
		// Lỗi store transient: requeue để xử lý lại sau
		w.log.WithError(err).WithField("videoId", payload.VideoID).Error("Cập nhật trạng thái resolution thất bại, requeue")
		_ = d.Nack(false, true)
		return
	}

	w.log.WithFields(logrus.Fields{
		"videoId":    payload.VideoID,
		"resolution": payload.Resolution,
	}).Info("Resolution chuyển sang ready")
	_ = d.Ack(false)
}
