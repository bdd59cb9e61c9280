package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/w-h-a/librarian/genre"
	"golang.org/x/text/cases"
)

const (
	defaultTTL = 24 * time.Hour
)

// cacheInferrer remembers inferred genres per role and folded subject.
// Undetermined answers are cached too so a flaky subject does not hit the
// model on every turn; transport errors are not.
type cacheInferrer struct {
	options genre.Options
	inner   genre.Inferrer
	cache   *ristretto.Cache
	ttl     time.Duration
}

func (i *cacheInferrer) Infer(ctx context.Context, subject string, role genre.Role) ([]string, error) {
	key := string(role) + "\x00" + cases.Fold().String(subject)

	if v, ok := i.cache.Get(key); ok {
		genres, _ := v.([]string)
		if len(genres) == 0 {
			return nil, genre.ErrUndetermined
		}
		return genres, nil
	}

	genres, err := i.inner.Infer(ctx, subject, role)
	switch {
	case errors.Is(err, genre.ErrUndetermined):
		i.cache.SetWithTTL(key, []string{}, 1, i.ttl)
		return nil, err
	case err != nil:
		return nil, err
	}

	i.cache.SetWithTTL(key, genres, int64(len(genres)), i.ttl)

	return genres, nil
}

// Wait blocks until pending cache writes are visible.
func (i *cacheInferrer) Wait() {
	i.cache.Wait()
}

func NewInferrer(opts ...genre.Option) genre.Inferrer {
	options := genre.NewOptions(opts...)

	inner, ok := InferrerFrom(options.Context)
	if !ok || inner == nil {
		detail := "cache inferrer requires an inner inferrer"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	ttl := defaultTTL
	if t, ok := TTLFrom(options.Context); ok && t > 0 {
		ttl = t
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	})
	if err != nil {
		detail := "failed to create ristretto cache for genre inferrer"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	return &cacheInferrer{
		options: options,
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
	}
}
