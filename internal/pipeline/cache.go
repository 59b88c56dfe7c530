package pipeline

import (
	"crypto/sha256"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Runner is anything that turns raw generator output into a Result.
type Runner interface {
	Run(raw string) Result
}

// Cache memoizes a Runner by the SHA-256 of its input. Results are cloned in
// both directions, so callers may modify what they get back.
type Cache struct {
	next    Runner
	results *lru.Cache[[sha256.Size]byte, Result]
}

func NewCache(next Runner, size int) (*Cache, error) {
	results, err := lru.New[[sha256.Size]byte, Result](size)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &Cache{next: next, results: results}, nil
}

func (c *Cache) Run(raw string) Result {
	key := sha256.Sum256([]byte(raw))
	if r, ok := c.results.Get(key); ok {
		return r.Clone()
	}
	r := c.next.Run(raw)
	c.results.Add(key, r.Clone())
	return r
}

func (c *Cache) Len() int {
	return c.results.Len()
}
