package chatRepository

import (
	"context"
	"sync"
	"time"

	"Edunabha/internal/entity"
)

// Repository keeps conversations in memory only; they end with the process,
// when cleared, or after sitting idle for longer than the idle TTL.
type Repository interface {
	Append(ctx context.Context, key string, messages ...entity.ChatMessage) error
	List(ctx context.Context, key string) ([]entity.ChatMessage, error)
	Clear(ctx context.Context, key string) error
}

type conversation struct {
	messages   []entity.ChatMessage
	lastActive time.Time
}

type repository struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
	maxMessages   int
	idleTTL       time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

// New keeps at most maxMessages per conversation, dropping the oldest. A
// conversation untouched for idleTTL is forgotten; zero keeps it forever.
func New(maxMessages int, idleTTL time.Duration) Repository {
	return &repository{
		conversations: make(map[string]*conversation),
		maxMessages:   maxMessages,
		idleTTL:       idleTTL,
		now:           time.Now,
	}
}

func (r *repository) expired(c *conversation, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(c.lastActive) > r.idleTTL
}

// sweepLocked drops idle conversations at most once per idle TTL.
func (r *repository) sweepLocked(now time.Time) {
	if r.idleTTL <= 0 || now.Sub(r.lastSweep) < r.idleTTL {
		return
	}
	r.lastSweep = now
	for key, c := range r.conversations {
		if r.expired(c, now) {
			delete(r.conversations, key)
		}
	}
}

func (r *repository) Append(_ context.Context, key string, messages ...entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	c, ok := r.conversations[key]
	if !ok || r.expired(c, now) {
		c = &conversation{}
		r.conversations[key] = c
	}
	c.lastActive = now

	conv := append(c.messages, messages...)
	if r.maxMessages > 0 && len(conv) > r.maxMessages {
		conv = append([]entity.ChatMessage(nil), conv[len(conv)-r.maxMessages:]...)
	}
	c.messages = conv
	return nil
}

func (r *repository) List(_ context.Context, key string) ([]entity.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[key]
	if !ok || r.expired(c, r.now()) {
		return nil, nil
	}
	return append([]entity.ChatMessage(nil), c.messages...), nil
}

func (r *repository) Clear(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, key)
	return nil
}

func (r *repository) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}
