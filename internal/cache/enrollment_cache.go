package cache

import (
	"context"
	"coursemaster/internal/model"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EnrollmentTTL 选课列表缓存时间
const EnrollmentTTL = 5 * time.Minute

type localEntry struct {
	enrollments []model.Enrollment
	expires     time.Time
}

// EnrollmentCache 按用户缓存选课列表，写操作确认后失效
type EnrollmentCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
	now func() time.Time

	mu    sync.Mutex
	local map[uint]localEntry
}

func NewEnrollmentCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *EnrollmentCache {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = EnrollmentTTL
	}
	return &EnrollmentCache{
		rdb:   rdb,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
		local: make(map[uint]localEntry),
	}
}

func enrollmentKey(userID uint) string {
	return fmt.Sprintf("coursemaster:enrollments:%d", userID)
}

func (c *EnrollmentCache) Get(ctx context.Context, userID uint) ([]model.Enrollment, bool) {
	if c.rdb == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		entry, ok := c.local[userID]
		if !ok || c.now().After(entry.expires) {
			delete(c.local, userID)
			return nil, false
		}
		return copyEnrollments(entry.enrollments), true
	}

	data, err := c.rdb.Get(ctx, enrollmentKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Failed to read enrollment cache", zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil, false
	}
	var enrollments []model.Enrollment
	if err := json.Unmarshal(data, &enrollments); err != nil {
		return nil, false
	}
	return enrollments, true
}

func (c *EnrollmentCache) Set(ctx context.Context, userID uint, enrollments []model.Enrollment) {
	if c.rdb == nil {
		c.mu.Lock()
		c.local[userID] = localEntry{enrollments: copyEnrollments(enrollments), expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return
	}

	data, err := json.Marshal(enrollments)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, enrollmentKey(userID), data, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to write enrollment cache", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (c *EnrollmentCache) Invalidate(ctx context.Context, userID uint) {
	c.mu.Lock()
	delete(c.local, userID)
	c.mu.Unlock()

	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, enrollmentKey(userID)).Err(); err != nil {
		c.log.Warn("Failed to invalidate enrollment cache", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func copyEnrollments(in []model.Enrollment) []model.Enrollment {
	if in == nil {
		return nil
	}
	out := make([]model.Enrollment, len(in))
	for i, e := range in {
		e.CompletedLessons = append([]string(nil), e.CompletedLessons...)
		out[i] = e
	}
	return out
}
