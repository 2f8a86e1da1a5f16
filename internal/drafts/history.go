package drafts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/nats"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

// Event is one entry of the submission history.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Resource  string        `json:"resource"`
	Session   string        `json:"session"`
	Type      string        `json:"type"`
	Status    wizard.Status `json:"status,omitempty"`
	Message   string        `json:"message,omitempty"`
	RecordID  string        `json:"record_id,omitempty"`
}

// Record appends ev to the history. ID and Timestamp are filled in when
// empty; Type defaults to a submission.
func (s *Store) Record(ctx context.Context, ev Event) (Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Type == "" {
		ev.Type = nats.EventSubmission
	}
	data, err := sonic.Marshal(ev)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode event: %w", err)
	}
	subject := nats.SubjectForEvent(ev.Resource, ev.Type)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish %s: %v", subject, err)
		return Event{}, fmt.Errorf("failed to record event: %w", err)
	}
	logger.Debug("Recorded %s seq=%d", subject, ack.Sequence)
	return ev, nil
}

// RecordSubmission stores the outcome of a finished submission.
func (s *Store) RecordSubmission(ctx context.Context, resourceName, session string, st wizard.State) (Event, error) {
	return s.Record(ctx, Event{
		Resource: resourceName,
		Session:  session,
		Type:     nats.EventSubmission,
		Status:   st.Status,
		Message:  st.Message,
	})
}

// History returns the events of resourceName, or of every resource when it
// is empty, oldest first.
func (s *Store) History(ctx context.Context, resourceName string) ([]Event, error) {
	filter := "clinicadmin.>"
	if resourceName != "" {
		filter = nats.SubjectForResource(resourceName)
	}
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: filter,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	const batchSize = 500
	var events []Event
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}
		n := 0
		for msg := range msgs.Messages() {
			n++
			var ev Event
			if err := sonic.Unmarshal(msg.Data(), &ev); err != nil {
				meta, _ := msg.Metadata()
				if meta != nil {
					logger.Warn("Skipping malformed event (seq=%d): %v", meta.Sequence.Stream, err)
				}
				_ = msg.Ack()
				continue
			}
			events = append(events, ev)
			_ = msg.Ack()
		}
		if n < batchSize {
			break
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}
