// Package staging holds not-yet-submitted attachment metadata for open
// interaction sessions. Blobs live elsewhere; only metadata is staged.
package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	attachmentPrefix = "staging:att:"
	sessionPrefix    = "staging:session:"
)

// StagedAttachment is metadata waiting to be appended to a ticket on the
// next committed transition.
type StagedAttachment struct {
	ID         string `json:"id"`
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedBy string `json:"uploaded_by"`
}

// Store is a Redis-backed staging area keyed by interaction session.
// Entries expire with the session TTL so abandoned sessions clean
// themselves up.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a staging store over an existing Redis client.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Stage records one attachment for the session and returns its staged id.
func (s *Store) Stage(ctx context.Context, sessionID string, att StagedAttachment) (string, error) {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	payload, err := json.Marshal(att)
	if err != nil {
		return "", fmt.Errorf("marshal staged attachment: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, attachmentPrefix+att.ID, payload, s.ttl)
	pipe.SAdd(ctx, sessionPrefix+sessionID, att.ID)
	pipe.Expire(ctx, sessionPrefix+sessionID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("stage attachment: %w", err)
	}
	return att.ID, nil
}

// StagedIDs lists the staged attachment ids for a session.
func (s *Store) StagedIDs(ctx context.Context, sessionID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, sessionPrefix+sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("list staged ids: %w", err)
	}
	return ids, nil
}

// Resolve loads staged metadata by id. Expired or unknown ids are
// silently skipped.
func (s *Store) Resolve(ctx context.Context, ids []string) ([]StagedAttachment, error) {
	result := make([]StagedAttachment, 0, len(ids))
	for _, id := range ids {
		payload, err := s.client.Get(ctx, attachmentPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load staged attachment %s: %w", id, err)
		}
		var att StagedAttachment
		if err := json.Unmarshal(payload, &att); err != nil {
			return nil, fmt.Errorf("decode staged attachment %s: %w", id, err)
		}
		result = append(result, att)
	}
	return result, nil
}

// Discard drops individual staged entries once they have been persisted
// to durable storage.
func (s *Store) Discard(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, attachmentPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("discard staged attachments: %w", err)
	}
	return nil
}

// Clear drops all staged attachments of a session, typically after a
// successful commit persisted them.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	ids, err := s.StagedIDs(ctx, sessionID)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, attachmentPrefix+id)
	}
	pipe.Del(ctx, sessionPrefix+sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear staged attachments: %w", err)
	}
	return nil
}
