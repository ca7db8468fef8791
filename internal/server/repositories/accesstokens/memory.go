package accesstokens

import (
	"context"
	"hash/maphash"
	"sync"

	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/server/models"
)

const shardCount = 32

type shard struct {
	mu     sync.RWMutex
	tokens map[string]*models.AccessToken
}

// MemoryRepository keeps tokens in sharded in-process maps. Values are cloned
// on the way in and out so callers never share state with the store.
type MemoryRepository struct {
	seed   maphash.Seed
	shards [shardCount]*shard
}

func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{seed: maphash.MakeSeed()}
	for i := range r.shards {
		r.shards[i] = &shard{tokens: make(map[string]*models.AccessToken)}
	}
	return r
}

func (r *MemoryRepository) shardFor(hash string) *shard {
	return r.shards[maphash.String(r.seed, hash)%shardCount]
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.AccessToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.shardFor(token.Hash)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token.Hash]; ok {
		return common.ErrorAlreadyExists
	}

	stored := token.Clone()
	stored.ID = ""
	s.tokens[token.Hash] = stored
	return nil
}

func (r *MemoryRepository) FindByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.shardFor(hash)
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t.Clone(), nil
}

func (r *MemoryRepository) Revoke(ctx context.Context, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.shardFor(hash)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[hash]
	if !ok {
		return common.ErrorNotFound
	}
	t.Revoked = true
	return nil
}

// Len returns the number of stored tokens, revoked and expired included.
func (r *MemoryRepository) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.tokens)
		s.mu.RUnlock()
	}
	return n
}
