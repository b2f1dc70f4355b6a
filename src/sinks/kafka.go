package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"feed-monitor/src/models"

	"github.com/IBM/sarama"
)

// KafkaSink sends each report to a topic, keyed by the monitor name.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// -----------------------------------------------------------------------------

func SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	return cfg
}

func NewKafkaSink(producer sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (k *KafkaSink) Name() string { return "kafka" }

// -----------------------------------------------------------------------------

func (k *KafkaSink) Publish(ctx context.Context, report models.MRateReport) error {
	js, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("json marshal report: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(report.Name),
		Value: sarama.ByteEncoder(js),
	})
	if err != nil {
		return fmt.Errorf("send report to kafka: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Close releases the producer
func (k *KafkaSink) Close() error {
	return k.producer.Close()
}
