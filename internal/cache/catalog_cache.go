// Package cache 课程目录快照和用户选课缓存。Redis 不可用时退化为进程内缓存。
package cache

import (
	"context"
	"coursemaster/internal/model"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const catalogKey = "coursemaster:catalog:snapshot"

type catalogSnapshot struct {
	Courses   []model.Course `json:"courses"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// CatalogCache 最近一次成功获取的课程列表，上游失败时兜底
type CatalogCache struct {
	rdb *redis.Client
	log *zap.Logger

	mu    sync.RWMutex
	local *catalogSnapshot
}

func NewCatalogCache(rdb *redis.Client, log *zap.Logger) *CatalogCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogCache{rdb: rdb, log: log}
}

// Store 保存快照，不设过期时间
func (c *CatalogCache) Store(ctx context.Context, courses []model.Course) {
	snap := &catalogSnapshot{Courses: copyCourses(courses), UpdatedAt: time.Now()}

	c.mu.Lock()
	c.local = snap
	c.mu.Unlock()

	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		c.log.Error("Failed to encode catalog snapshot", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, catalogKey, data, 0).Err(); err != nil {
		c.log.Warn("Failed to store catalog snapshot", zap.Error(err))
	}
}

// StoreIfStale 课程列表有变化或快照超过 maxAge 时才写入，返回是否写入
func (c *CatalogCache) StoreIfStale(ctx context.Context, courses []model.Course, maxAge time.Duration) bool {
	c.mu.RLock()
	local := c.local
	c.mu.RUnlock()
	if local != nil && time.Since(local.UpdatedAt) < maxAge && sameCourses(local.Courses, courses) {
		return false
	}
	c.Store(ctx, courses)
	return true
}

// sameCourses 按 ID 和更新时间比较
func sameCourses(a, b []model.Course) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].UpdatedAt.Equal(b[i].UpdatedAt) {
			return false
		}
	}
	return true
}

// Load 优先进程内快照，其次 Redis（进程重启后）
func (c *CatalogCache) Load(ctx context.Context) ([]model.Course, time.Time, bool) {
	c.mu.RLock()
	local := c.local
	c.mu.RUnlock()
	if local != nil {
		return copyCourses(local.Courses), local.UpdatedAt, true
	}

	if c.rdb == nil {
		return nil, time.Time{}, false
	}
	data, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Failed to load catalog snapshot", zap.Error(err))
		}
		return nil, time.Time{}, false
	}
	var snap catalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Warn("Corrupt catalog snapshot", zap.Error(err))
		return nil, time.Time{}, false
	}

	c.mu.Lock()
	c.local = &snap
	c.mu.Unlock()
	return copyCourses(snap.Courses), snap.UpdatedAt, true
}

// Invalidate 管理员修改课程后调用；保留 Redis 中的快照作为兜底
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.local = nil
	c.mu.Unlock()
}

func copyCourses(courses []model.Course) []model.Course {
	if courses == nil {
		return nil
	}
	out := make([]model.Course, len(courses))
	copy(out, courses)
	return out
}
