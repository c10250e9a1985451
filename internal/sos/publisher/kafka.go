package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the part of *kgo.Client the notifier needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaNotifier publishes events keyed by alert ID, so every event for one
// alert lands on the same partition.
type KafkaNotifier struct {
	producer Producer
	topic    string
}

func NewKafkaNotifier(producer Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Channel() string { return "kafka" }

func (n *KafkaNotifier) Notify(ctx context.Context, ev DispatchEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode dispatch event: %w", err)
	}
	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(ev.AlertID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte("sos_dispatched")},
		},
	}
	if err := n.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish dispatch event: %w", err)
	}
	return nil
}
