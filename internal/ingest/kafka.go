package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"aedocs/internal/corelog"
	"aedocs/internal/model"
)

// KafkaEvents publishes job-phase events to a Kafka topic, adapted from the
// teacher's worker-pool-over-reader pattern (internal/orchestrator/kafka.go)
// but used here purely for fire-and-forget publication, not consumption.
type KafkaEvents struct {
	writer *kafka.Writer
	log    corelog.Logger
}

// NewKafkaEvents builds an EventPublisher writing JSON-encoded job events to
// topic on brokers.
func NewKafkaEvents(brokers []string, topic string, log corelog.Logger) *KafkaEvents {
	if log == nil {
		log = corelog.Noop{}
	}
	return &KafkaEvents{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log,
	}
}

type jobEvent struct {
	Type      string    `json:"type"`
	JobID     string    `json:"job_id"`
	ArchiveID string    `json:"archive_id"`
	Phase     string    `json:"phase"`
	At        time.Time `json:"at"`
}

func (k *KafkaEvents) publish(ctx context.Context, eventType string, job model.Job) {
	evt := jobEvent{Type: eventType, JobID: job.ID, ArchiveID: job.ArchiveID, Phase: string(job.Phase), At: timeNow()}
	body, err := json.Marshal(evt)
	if err != nil {
		k.log.Error("marshal_job_event", corelog.Fields{"job_id": job.ID, "error": err.Error()})
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := k.writer.WriteMessages(writeCtx, kafka.Message{Key: []byte(job.ID), Value: body}); err != nil {
		k.log.Error("publish_job_event", corelog.Fields{"job_id": job.ID, "type": eventType, "error": err.Error()})
	}
}

func (k *KafkaEvents) PublishPhaseAdvanced(ctx context.Context, job model.Job) {
	k.publish(ctx, "job.phase_advanced", job)
}

func (k *KafkaEvents) PublishCompleted(ctx context.Context, job model.Job) {
	k.publish(ctx, "job.completed", job)
}

func (k *KafkaEvents) Close() error { return k.writer.Close() }

var _ EventPublisher = (*KafkaEvents)(nil)
