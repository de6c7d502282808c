package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-shop-bot/internal/catalog"
	"github.com/ariefcatur/go-shop-bot/internal/redisx"
	"github.com/redis/go-redis/v9"
	"sync"
)

// Session is the per-admin wizard state. It only lives while a flow is
// in progress.
type Session struct {
	AdminID int64 `json:"admin_id"`
	Flow    Flow  `json:"flow"`
	State   State `json:"state"`

	Draft catalog.Item `json:"draft"`

	// resume context
	UsedIDs       []int                 `json:"used_ids,omitempty"`
	Categories    []catalog.Category    `json:"categories,omitempty"`
	Subcategories []catalog.Subcategory `json:"subcategories,omitempty"`
	Items         []ItemRef             `json:"items,omitempty"`
	TargetID      int                   `json:"target_id,omitempty"`
	Edit          EditField             `json:"edit,omitempty"`
	Category      catalog.Category      `json:"category"`
	Subcategory   catalog.Subcategory   `json:"subcategory"`
}

type ItemRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Store keeps sessions between messages. Load returns nil, nil when the
// admin has no session.
type Store interface {
	Load(ctx context.Context, adminID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, adminID int64) error
}

type MemoryStore struct {
	mu sync.Mutex
	m  map[int64][]byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: map[int64][]byte{}} }

// sessions are stored encoded so callers never share slices with the store
func (s *MemoryStore) Load(_ context.Context, adminID int64) (*Session, error) {
	s.mu.Lock()
	b, ok := s.m[adminID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.m[sess.AdminID] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, adminID int64) error {
	s.mu.Lock()
	delete(s.m, adminID)
	s.mu.Unlock()
	return nil
}

// RedisStore keeps sessions as JSON. The TTL only reaps abandoned keys.
type RedisStore struct {
	Redis *redis.Client
}

func (s *RedisStore) Load(ctx context.Context, adminID int64) (*Session, error) {
	b, err := s.Redis.Get(ctx, fmt.Sprintf(redisx.KeyWizardSession, adminID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, fmt.Sprintf(redisx.KeyWizardSession, sess.AdminID), b, redisx.TTLWizardSession).Err()
}

func (s *RedisStore) Delete(ctx context.Context, adminID int64) error {
	return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyWizardSession, adminID)).Err()
}
