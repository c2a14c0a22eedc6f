//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/adapter/kafka"
	"github.com/couchcryptid/crop-loss-service/internal/config"
	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/estimator"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
	"github.com/couchcryptid/crop-loss-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testEstimateTopic = "test-crop-loss-estimates"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("crop-loss-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type auditMessage struct {
	Event   domain.EstimateEvent
	Key     string
	Headers map[string]string
}

func readAudit(ctx context.Context, t *testing.T, consumer *kafkago.Reader) auditMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from estimate topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.EstimateEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal estimate event")
	return auditMessage{Event: event, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testEstimateTopic,
		GroupID:     fmt.Sprintf("test-audit-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestWriterRoundTrip verifies that kafka.Writer publishes estimate events
// with the expected key and headers.
func TestWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEstimateTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaEstimateTopic: testEstimateTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	req := domain.EstimateRequest{Latitude: 17.2, Longitude: 78.1, CropType: "rice", FieldArea: 2}
	event := domain.EstimateEvent{
		ID:         "req-round-trip",
		Request:    req,
		Estimate:   estimator.NewSimulation(0).Simulate(req),
		ProducedAt: time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, writer.LoadBatch(ctx, []domain.EstimateEvent{event}))

	got := readAudit(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "req-round-trip", got.Key)
	assert.Equal(t, "simulation", got.Headers["data_source"])
	assert.Equal(t, "2024-06-15T10:30:00Z", got.Headers["produced_at"])
	assert.Equal(t, req, got.Event.Request)
	assert.InDelta(t, event.Estimate.LossPercentage, got.Event.Estimate.LossPercentage, 1e-9)
}

// TestOrchestratorAudit wires the orchestrator to the audit publisher and a
// real broker, and checks that every estimate lands on the topic.
func TestOrchestratorAudit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEstimateTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaEstimateTopic: testEstimateTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	publisher := pipeline.NewAuditPublisher(writer, discardLogger(), metrics, 10, 200*time.Millisecond)

	runCtx, stop := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- publisher.Run(runCtx) }()

	// No fallible tiers: every request lands on the simulator.
	orch := pipeline.NewOrchestrator(nil, estimator.NewSimulation(0), publisher, discardLogger(), metrics)

	requests := []domain.EstimateRequest{
		{Latitude: 17.2, Longitude: 78.1, CropType: "rice", FieldArea: 2},
		{Latitude: 17.1, Longitude: 78.2, CropType: "wheat", FieldArea: 1.5},
		{Latitude: 17.3, Longitude: 78.0, CropType: "cotton", FieldArea: 4},
	}
	want := make(map[string]domain.CropLossEstimate, len(requests))
	for i, req := range requests {
		id := fmt.Sprintf("req-%d", i)
		want[id] = orch.AnalyzeCropLoss(domain.WithRequestID(ctx, id), req)
	}

	consumer := newConsumer(t, broker)
	for range requests {
		got := readAudit(ctx, t, consumer)
		est, ok := want[got.Key]
		require.True(t, ok, "unexpected key %q", got.Key)
		assert.Equal(t, got.Key, got.Event.ID)
		assert.Equal(t, string(domain.SourceSimulation), got.Headers["data_source"])
		assert.InDelta(t, est.LossPercentage, got.Event.Estimate.LossPercentage, 1e-9)
		assert.Equal(t, est.DamageCause, got.Event.Estimate.DamageCause)
		_, err := time.Parse(time.RFC3339, got.Headers["produced_at"])
		assert.NoError(t, err, "produced_at should be valid RFC3339")
		delete(want, got.Key)
	}
	assert.Empty(t, want)

	stop()
	require.NoError(t, <-errCh)
}
