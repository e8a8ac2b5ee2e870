package producer

import (
	"context"
	"encoding/json"
	"time"

	"fulfillment-service/internal/service"

	"github.com/segmentio/kafka-go"
)

// OrderEventProducer публикует события жизненного цикла заказа в один топик,
// ключ — orderId, чтобы события одного заказа шли в один партишен по порядку
type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type envelope struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

func (p *OrderEventProducer) publish(ctx context.Context, key, kind string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(envelope{Kind: kind, Payload: payload})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *OrderEventProducer) PublishStoreStatusChanged(ctx context.Context, e service.StoreStatusChangedEvent) error {
	return p.publish(ctx, e.OrderID.String(), "store_status_changed", e)
}

func (p *OrderEventProducer) PublishReturnCompleted(ctx context.Context, e service.ReturnCompletedEvent) error {
	return p.publish(ctx, e.OrderID.String(), "return_completed", e)
}

func (p *OrderEventProducer) PublishRefundInconsistency(ctx context.Context, e service.RefundInconsistencyEvent) error {
	return p.publish(ctx, e.OrderID.String(), "refund_inconsistency", e)
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
