package messaging

import (
	"context"
	"strconv"
	"time"

	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"

	"github.com/segmentio/kafka-go"
)

const (
	headerEventID   = "event-id"
	headerEventType = "event-type"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes booking events. Messages are keyed by booking id so one
// booking's events stay ordered within a partition.
type Producer struct {
	writer messageWriter
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func newProducer(w messageWriter) *Producer {
	return &Producer{writer: w}
}

func (p *Producer) PublishBatch(ctx context.Context, msgs []commands.EventMessage) ([]error, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	now := time.Now()
	out := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		out[i] = kafka.Message{
			Key:   []byte(m.Key),
			Value: m.Payload,
			Time:  now,
			Headers: []kafka.Header{
				{Key: headerEventID, Value: []byte(strconv.FormatInt(m.ID, 10))},
				{Key: headerEventType, Value: []byte(m.Type)},
			},
		}
	}

	err := p.writer.WriteMessages(ctx, out...)
	if err == nil {
		return make([]error, len(msgs)), nil
	}
	var writeErrs kafka.WriteErrors
	if errs.As(err, &writeErrs) && len(writeErrs) == len(msgs) {
		return []error(writeErrs), nil
	}
	return nil, errs.Wrap(err, "failed to write booking events to kafka")
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
