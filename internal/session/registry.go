// Package session 保存每个登录用户的学习视图和测验作答状态。
// 登录时创建，登出或长时间空闲时销毁；销毁会关闭所有学习视图，丢弃仍在途的保存结果。
package session

import (
	"coursemaster/internal/progress"
	"sync"
	"time"
)

type Session struct {
	UserID    uint
	CreatedAt time.Time

	mu       sync.Mutex
	trackers map[string]*progress.LessonTracker
	attempts map[string]*progress.QuizAttempt
	closed   bool
	lastUsed time.Time
}

func newSession(userID uint, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		CreatedAt: now,
		lastUsed:  now,
		trackers:  make(map[string]*progress.LessonTracker),
		attempts:  make(map[string]*progress.QuizAttempt),
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// LastUsed 最近一次被请求访问的时间
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Tracker 返回课程的学习视图，不存在时返回 nil
func (s *Session) Tracker(courseID string) *progress.LessonTracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackers[courseID]
}

// TrackerOrCreate 复用已有视图，否则用 create 新建
func (s *Session) TrackerOrCreate(courseID string, create func() *progress.LessonTracker) (*progress.LessonTracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.trackers[courseID]; ok && !t.Closed() {
		return t, false
	}
	t := create()
	if s.closed {
		t.Close()
		return t, true
	}
	s.trackers[courseID] = t
	return t, true
}

// CloseTracker 离开学习页面
func (s *Session) CloseTracker(courseID string) bool {
	s.mu.Lock()
	t, ok := s.trackers[courseID]
	delete(s.trackers, courseID)
	s.mu.Unlock()
	if ok {
		t.Close()
	}
	return ok
}

func (s *Session) Attempt(quizID string) *progress.QuizAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[quizID]
}

// StartAttempt 每次进入测验都是新的作答
func (s *Session) StartAttempt(attempt *progress.QuizAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.attempts[attempt.Quiz().ID] = attempt
}

func (s *Session) DiscardAttempt(quizID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attempts[quizID]
	delete(s.attempts, quizID)
	return ok
}

func (s *Session) close() {
	s.mu.Lock()
	trackers := s.trackers
	s.trackers = make(map[string]*progress.LessonTracker)
	s.attempts = make(map[string]*progress.QuizAttempt)
	s.closed = true
	s.mu.Unlock()

	for _, t := range trackers {
		t.Close()
	}
}

// Registry 所有在线用户的会话
type Registry struct {
	mu       sync.Mutex
	sessions map[uint]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uint]*Session), now: time.Now}
}

// Open 获取用户会话，不存在则创建
func (r *Registry) Open(userID uint) *Session {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		s.touch(now)
		return s
	}
	s := newSession(userID, now)
	r.sessions[userID] = s
	return s
}

func (r *Registry) Get(userID uint) (*Session, bool) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if ok {
		s.touch(now)
	}
	return s, ok
}

// EvictIdle 回收空闲超过 maxIdle 的会话，返回回收数量
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	return len(idle)
}

// Close 用户登出
func (r *Registry) Close(userID uint) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if ok {
		s.close()
	}
}

// CloseAll 服务关闭时调用
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uint]*Session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
