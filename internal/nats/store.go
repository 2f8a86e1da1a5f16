package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// HistoryStream records every submission attempt.
	HistoryStream = "clinicadmin_history"
	// DraftBucket holds one resumable draft per resource and session.
	DraftBucket = "clinicadmin_drafts"

	EventSubmission = "submission"
	EventDeleted    = "deleted"
)

// SubjectForResource matches every event of one resource.
// Example: "clinicadmin.service.>"
func SubjectForResource(resource string) string {
	return fmt.Sprintf("clinicadmin.%s.>", resource)
}

// SubjectForEvent is the subject of one event type of a resource.
// Example: "clinicadmin.service.submission"
func SubjectForEvent(resource, eventType string) string {
	return fmt.Sprintf("clinicadmin.%s.%s", resource, eventType)
}

// SetupStream creates or updates the history stream with 90 day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     HistoryStream,
		Subjects: []string{"clinicadmin.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	})
}

// SetupDraftBucket creates or updates the draft key-value bucket. A few
// revisions are kept per key.
func SetupDraftBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      DraftBucket,
		Description: "Unfinished wizard drafts",
		History:     5,
		Storage:     jetstream.FileStorage,
	})
}
