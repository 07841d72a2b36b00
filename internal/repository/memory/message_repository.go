package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// MessageRepository keeps each session's messages in process memory. A session
// expires ttl after its last write.
type MessageRepository struct {
	cache  *cache.Cache
	ttl    time.Duration
	nextId atomic.Int64

	mu sync.Mutex // serialises get-or-create of a session log
}

type sessionLog struct {
	mu       sync.RWMutex
	messages []entity.Message
}

var _ contract.MessageRepository = &MessageRepository{}

func NewMessageRepository(ttl time.Duration) *MessageRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MessageRepository{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (r *MessageRepository) session(sessionId string) *sessionLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(sessionId); found {
		log := x.(*sessionLog)
		// Touch to extend the expiry.
		r.cache.Set(sessionId, log, r.ttl)
		return log
	}
	log := &sessionLog{}
	r.cache.Set(sessionId, log, r.ttl)
	return log
}

func (r *MessageRepository) Create(_ context.Context, message *entity.Message) error {
	log := r.session(message.SessionId)

	log.mu.Lock()
	defer log.mu.Unlock()

	message.Id = r.nextId.Add(1)
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	log.messages = append(log.messages, *message)
	return nil
}

func (r *MessageRepository) FindAllBySession(_ context.Context, sessionId string) ([]*entity.Message, error) {
	return r.find(sessionId, func(*entity.Message) bool { return true }), nil
}

func (r *MessageRepository) FindAllBySessionAndAgent(_ context.Context, sessionId, agentKey string) ([]*entity.Message, error) {
	return r.find(sessionId, func(m *entity.Message) bool { return m.AgentKey == agentKey }), nil
}

func (r *MessageRepository) find(sessionId string, keep func(*entity.Message) bool) []*entity.Message {
	x, found := r.cache.Get(sessionId)
	if !found {
		return []*entity.Message{}
	}
	log := x.(*sessionLog)

	log.mu.RLock()
	defer log.mu.RUnlock()

	out := make([]*entity.Message, 0, len(log.messages))
	for i := range log.messages {
		m := log.messages[i]
		if keep(&m) {
			out = append(out, &m)
		}
	}
	return out
}
