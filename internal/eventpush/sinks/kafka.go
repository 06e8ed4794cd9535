package sinks

import (
	"context"

	"github.com/segmentio/kafka-go"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAdapter publishes to the topic named by the target endpoint. Messages
// are keyed by player so one player's events land on one partition.
type KafkaAdapter struct {
	writer kafkaWriter
}

func NewKafkaAdapter(brokers []string) *KafkaAdapter {
	return &KafkaAdapter{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (a *KafkaAdapter) Name() string {
	return "kafka"
}

func (a *KafkaAdapter) Send(ctx context.Context, topic, _ string, msg Message) error {
	return a.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(msg.Key),
		Value: msg.Body,
	})
}

func (a *KafkaAdapter) Close() error {
	return a.writer.Close()
}
