package broker

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// KafkaAdapter publishes one Kafka record per (tenantId, nodeId) pair,
// using the canonical XML wire form for the record value and carrying
// headers as Kafka record headers.
type KafkaAdapter struct {
	client      *kgo.Client
	topicFormat string // e.g. "odds.tenant.{tenant}"
}

// NewKafkaAdapter creates a KafkaAdapter connected to the given seed
// brokers. topicFormat must contain the literal substring "{tenant}",
// replaced with the target tenant id for each publish.
func NewKafkaAdapter(seedBrokers []string, topicFormat string) (*KafkaAdapter, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seedBrokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("broker: create kafka client: %w", err)
	}
	return &KafkaAdapter{client: client, topicFormat: topicFormat}, nil
}

// Close releases the underlying Kafka client.
func (a *KafkaAdapter) Close() {
	a.client.Close()
}

func (a *KafkaAdapter) topic(tenantID string) string {
	return strings.ReplaceAll(a.topicFormat, "{tenant}", tenantID)
}

// Publish serializes message to XML and produces it synchronously to the
// tenant's topic, carrying nodeID and the caller's headers as Kafka record
// headers.
func (a *KafkaAdapter) Publish(ctx context.Context, message oddsmodel.Message, sportID int64, nodeID, tenantID string, headers map[string]string) error {
	payload, err := xml.Marshal(message)
	if err != nil {
		return fmt.Errorf("broker: marshal message for tenant %s: %w", tenantID, err)
	}

	record := &kgo.Record{
		Topic: a.topic(tenantID),
		Key:   []byte(tenantID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "nodeId", Value: []byte(nodeID)},
			{Key: "sportId", Value: []byte(fmt.Sprintf("%d", sportID))},
		},
	}
	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	res := a.client.ProduceSync(ctx, record)
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("broker: produce to %s: %w", record.Topic, err)
	}
	return nil
}
