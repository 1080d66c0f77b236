package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/pkg/logger"
	"github.com/user/tagging-fight-cli/pkg/metrics"
)

// Reports caches fight reports by fight id. Cache errors are logged and
// treated as misses; the loader stays the source of truth.
type Reports struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewReports builds a report cache over kv.
func NewReports(kv KVStore, ttl time.Duration, log *zap.Logger) *Reports {
	return &Reports{kv: kv, ttl: ttl, logger: logger.OrNop(log)}
}

func reportKey(fightID int64) string {
	return fmt.Sprintf("fighttag:report:%d", fightID)
}

// Get returns the cached report, calling load and filling the cache on a miss.
func (r *Reports) Get(ctx context.Context, fightID int64, load func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	key := reportKey(fightID)
	val, err := r.kv.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheLookup("hit")
		return json.RawMessage(val), nil
	case errors.Is(err, ErrCacheMiss):
		metrics.RecordCacheLookup("miss")
	default:
		metrics.RecordCacheLookup("error")
		r.logger.Warn("report cache get failed", zap.String("key", key), zap.Error(err))
	}

	raw, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.kv.Set(ctx, key, string(raw), r.ttl); err != nil {
		r.logger.Warn("report cache set failed", zap.String("key", key), zap.Error(err))
	}
	return raw, nil
}

// Invalidate drops a fight's cached report.
func (r *Reports) Invalidate(ctx context.Context, fightID int64) error {
	return r.kv.Del(ctx, reportKey(fightID))
}
