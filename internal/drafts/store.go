// Package drafts persists unfinished wizard sessions and records every
// submission attempt, both in the embedded JetStream.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/nats"
	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

// ErrNotFound is returned when no draft is stored for a resource and session.
var ErrNotFound = errors.New("draft not found")

// Store keeps drafts in a key-value bucket and history in a stream.
type Store struct {
	js     jetstream.JetStream
	kv     jetstream.KeyValue
	stream jetstream.Stream
}

// NewStore prepares the bucket and stream on js.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	kv, err := nats.SetupDraftBucket(ctx, js)
	if err != nil {
		return nil, fmt.Errorf("failed to set up draft bucket: %w", err)
	}
	stream, err := nats.SetupStream(ctx, js)
	if err != nil {
		return nil, fmt.Errorf("failed to set up history stream: %w", err)
	}
	return &Store{js: js, kv: kv, stream: stream}, nil
}

// Open starts the embedded server in dataDir and returns a store on it.
// The returned close function shuts the server down.
func Open(ctx context.Context, dataDir string) (*Store, func() error, error) {
	emb, err := nats.Open(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start draft storage: %w", err)
	}
	s, err := NewStore(ctx, emb.JS)
	if err != nil {
		_ = emb.Close()
		return nil, nil, err
	}
	return s, emb.Close, nil
}

// Key is the bucket key of a draft, e.g. "service.default".
func Key(resourceName, session string) string {
	return resourceName + "." + sessionSlug(session)
}

func sessionSlug(session string) string {
	s := slug.Make(session)
	if s == "" {
		return "default"
	}
	return s
}

type stored struct {
	Session string `json:"session"`
	wizard.Snapshot
}

type storedRaw struct {
	Session     string         `json:"session"`
	Wizard      string         `json:"wizard"`
	ActiveStep  int            `json:"active_step"`
	ErroredStep int            `json:"errored_step"`
	Draft       map[string]any `json:"draft"`
	SavedAt     time.Time      `json:"saved_at"`
}

// Save stores snap as the current draft of session.
func (s *Store) Save(ctx context.Context, session string, snap wizard.Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := sonic.Marshal(stored{Session: session, Snapshot: snap})
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	key := Key(snap.Wizard, session)
	if _, err := s.kv.Put(ctx, key, data); err != nil {
		logger.Error("Failed to save draft %s: %v", key, err)
		return fmt.Errorf("failed to save draft: %w", err)
	}
	logger.Debug("Saved draft %s at step %d", key, snap.ActiveStep)
	return nil
}

// Load returns the draft of session for res with its values typed by the
// resource schema.
func (s *Store) Load(ctx context.Context, res resource.Resource, session string) (wizard.Snapshot, error) {
	raw, err := s.get(ctx, Key(res.Name, session))
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return wizard.Snapshot{
		Wizard:      raw.Wizard,
		ActiveStep:  raw.ActiveStep,
		ErroredStep: raw.ErroredStep,
		Draft:       res.Decode(raw.Draft),
		SavedAt:     raw.SavedAt,
	}, nil
}

func (s *Store) get(ctx context.Context, key string) (storedRaw, error) {
	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return storedRaw{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return storedRaw{}, fmt.Errorf("failed to read draft: %w", err)
	}
	var raw storedRaw
	if err := sonic.Unmarshal(entry.Value(), &raw); err != nil {
		return storedRaw{}, fmt.Errorf("failed to decode draft %s: %w", key, err)
	}
	if raw.Draft == nil {
		raw.Draft = map[string]any{}
	}
	return raw, nil
}

// Discard deletes the draft of session for resourceName.
func (s *Store) Discard(ctx context.Context, resourceName, session string) error {
	key := Key(resourceName, session)
	if _, err := s.kv.Get(ctx, key); errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	logger.Debug("Discarded draft %s", key)
	return nil
}

// Entry summarizes one stored draft.
type Entry struct {
	Resource   string
	Session    string
	ActiveStep int
	Fields     int
	SavedAt    time.Time
}

// List returns every stored draft ordered by resource and session.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		raw, err := s.get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Warn("Skipping unreadable draft %s: %v", key, err)
			continue
		}
		name := raw.Wizard
		if name == "" {
			name, _, _ = strings.Cut(key, ".")
		}
		entries = append(entries, Entry{
			Resource:   name,
			Session:    raw.Session,
			ActiveStep: raw.ActiveStep,
			Fields:     len(raw.Draft),
			SavedAt:    raw.SavedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Resource != entries[j].Resource {
			return entries[i].Resource < entries[j].Resource
		}
		return entries[i].Session < entries[j].Session
	})
	return entries, nil
}
