package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"trustvest-backend/internal/client"
	"trustvest-backend/internal/models"
	"trustvest-backend/internal/util"
)

const insertEventQuery = `INSERT INTO auth_events (event_time, event_type, user_id, email, details) VALUES (?, ?, ?, ?, ?)`

// Recorder fans auth events out to Kafka and ClickHouse. Either sink may be
// absent; recording never blocks or fails the request that produced the
// event. A nil *Recorder is valid and records nothing.
type Recorder struct {
	producer   *client.KafkaProducer
	clickhouse *client.ClickHouseClient
}

func NewRecorder(producer *client.KafkaProducer, ch *client.ClickHouseClient) *Recorder {
	if producer == nil && ch == nil {
		return nil
	}
	return &Recorder{
		producer:   producer,
		clickhouse: ch,
	}
}

// Record emits the event asynchronously.
func (r *Recorder) Record(event models.AuthEvent) {
	if r == nil {
		return
	}
	if event.EventTime.IsZero() {
		event.EventTime = time.Now().UTC()
	}

	go r.emit(event)
}

func (r *Recorder) emit(event models.AuthEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.producer != nil {
		payload, err := json.Marshal(event)
		if err == nil {
			if err := r.producer.ProduceMessage(ctx, []byte(event.EventType), payload); err != nil {
				util.Warn("failed to publish auth event",
					zap.String("event_type", event.EventType),
					zap.Error(err),
				)
			}
		}
	}

	if r.clickhouse != nil {
		if err := r.clickhouse.Exec(ctx, insertEventQuery,
			event.EventTime, event.EventType, event.UserID, event.Email, event.Details,
		); err != nil {
			util.Warn("failed to record auth event in ClickHouse",
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
		}
	}
}
