package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"vid_share/internal/common"
	"vid_share/internal/logger"
)

// AmqpDispatcher publish job lên RabbitMQ theo chu kỳ connect → declare → publish → close.
// Mỗi call là một connection cycle riêng: đơn giản, không giữ state, đổi lại trả giá
// latency connect/teardown cho mỗi message. Bản production nên thay bằng implementation
// pool connection phía sau cùng interface Dispatcher.
type AmqpDispatcher struct {
	uri     string        // URI kết nối broker
	timeout time.Duration // Chặn trên cho toàn bộ chu kỳ connect+publish
}

// NewAmqpDispatcher tạo dispatcher với URI và timeout từ cấu hình
func NewAmqpDispatcher(uri string, timeout time.Duration) *AmqpDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AmqpDispatcher{uri: uri, timeout: timeout}
}

// Enqueue serialize payload và publish lên queue durable tương ứng với kind.
// Lỗi ở bất cứ bước nào đều trả về transient error - caller quyết định retry.
func (d *AmqpDispatcher) Enqueue(ctx context.Context, kind JobKind, payload interface{}) error {
	body, err := json.Marshal(Envelope{Kind: kind, Payload: payload})
	if err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			"Không serialize được job payload",
			common.StatusInternalServerError,
			err,
		)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	conn, err := amqp.DialConfig(d.uri, amqp.Config{
		Dial: amqp.DefaultDial(d.timeout),
	})
	if err != nil {
		logger.GetErrorLogger().WithError(err).WithField("kind", kind).Error("Không kết nối được message broker")
		return common.ErrQueueUnavailable
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.GetErrorLogger().WithError(err).Error("Không mở được channel")
		return common.ErrQueueUnavailable
	}
	defer ch.Close()

	// Declare-if-absent: queue durable, tồn tại qua restart của broker
	queueName := QueueName(kind)
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		logger.GetErrorLogger().WithError(err).WithField("queue", queueName).Error("Không declare được queue")
		return common.ErrQueueUnavailable
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		logger.GetErrorLogger().WithError(err).WithField("queue", queueName).Error("Publish message thất bại")
		return common.ErrQueuePublish
	}

	return nil
}
