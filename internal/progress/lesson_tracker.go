// Package progress 维护单个课程学习视图的课时完成状态，以及单次测验作答状态。
package progress

import (
	"context"
	"coursemaster/internal/model"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Persister 保存课程的已完成课时集合。
// completed 为服务端已确认的集合加上本次完成的课时，同一视图的调用依次进行。
type Persister interface {
	PersistLessonCompletion(ctx context.Context, courseID string, completed []string) error
}

type PersisterFunc func(ctx context.Context, courseID string, completed []string) error

func (f PersisterFunc) PersistLessonCompletion(ctx context.Context, courseID string, completed []string) error {
	return f(ctx, courseID, completed)
}

// LessonTracker 一个用户在一门课程学习页面上的状态
type LessonTracker struct {
	mu        sync.Mutex
	course    *model.Course
	lessons   []model.Lesson
	persister Persister
	log       *zap.Logger

	completed    map[string]bool
	confirmed    map[string]bool
	pending      map[string]bool
	sendSem      chan struct{}
	current      string
	userSelected bool
	closed       bool
}

// LessonState 渲染学习页面所需的状态快照
type LessonState struct {
	CourseID           string        `json:"courseId"`
	CurrentLessonID    string        `json:"currentLessonId"`
	CurrentLesson      *model.Lesson `json:"currentLesson"`
	PreviousLessonID   string        `json:"previousLessonId,omitempty"`
	NextLessonID       string        `json:"nextLessonId,omitempty"`
	CompletedLessonIDs []string      `json:"completedLessonIds"`
	PendingLessonIDs   []string      `json:"pendingLessonIds"`
	TotalLessons       int           `json:"totalLessons"`
	ProgressPercent    int           `json:"progressPercent"`
}

func NewLessonTracker(course *model.Course, persister Persister, log *zap.Logger) *LessonTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &LessonTracker{
		course:    course,
		lessons:   course.AllLessons(),
		persister: persister,
		log:       log.With(zap.String("course_id", course.ID)),
		completed: make(map[string]bool),
		confirmed: make(map[string]bool),
		pending:   make(map[string]bool),
		sendSem:   make(chan struct{}, 1),
	}
}

func (t *LessonTracker) CourseID() string {
	return t.course.ID
}

// Initialize 用选课记录初始化已完成集合，并定位到第一个未完成课时。
// 可重复调用：仍在保存中的课时保留，用户已手动选择的课时不会被覆盖。
// enrollment 为 nil（未选课试看）时不重置已有的完成状态。
func (t *LessonTracker) Initialize(enrollment *model.Enrollment) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if enrollment != nil {
		seeded := make(map[string]bool)
		for _, id := range enrollment.CompletedLessons {
			if !t.course.HasLesson(id) {
				t.log.Warn("completed lesson not in course, treating as incomplete",
					zap.String("lesson_id", id),
					zap.String("enrollment_id", enrollment.ID))
				continue
			}
			seeded[id] = true
		}
		t.confirmed = make(map[string]bool, len(seeded))
		for id := range seeded {
			t.confirmed[id] = true
		}
		for id := range t.pending {
			seeded[id] = true
		}
		t.completed = seeded
	}

	if !t.userSelected {
		t.current = t.firstIncompleteLocked()
	}
}

func (t *LessonTracker) firstIncompleteLocked() string {
	if len(t.lessons) == 0 {
		return ""
	}
	for _, l := range t.lessons {
		if !t.completed[l.ID] {
			return l.ID
		}
	}
	return t.lessons[0].ID
}

// SelectLesson 切换当前课时；未知ID不报错，仅记录数据不一致
func (t *LessonTracker) SelectLesson(lessonID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if !t.course.HasLesson(lessonID) {
		t.log.Warn("selected lesson not in course", zap.String("lesson_id", lessonID))
	}
	t.current = lessonID
	t.userSelected = true
	return nil
}

// MarkCurrentComplete 将当前课时标记为完成。
// 已完成（或正在保存）时不发请求，返回 ErrAlreadyCompleted；保存失败回滚并返回 *PersistError；
// 视图在保存期间被关闭时丢弃结果并返回 ErrClosed。
func (t *LessonTracker) MarkCurrentComplete(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	lessonID := t.current
	t.mu.Unlock()

	if lessonID == "" || !t.course.HasLesson(lessonID) {
		return ErrLessonNotFound
	}

	cmd := &completion{tracker: t, lessonID: lessonID}
	err := runOptimistic(ctx, cmd, func(ctx context.Context) error {
		return t.send(ctx, lessonID)
	})
	if errors.Is(err, errSkipped) {
		if t.Closed() {
			return ErrClosed
		}
		return ErrAlreadyCompleted
	}
	if err != nil && !errors.Is(err, ErrClosed) {
		t.log.Error("persist lesson completion failed, rolled back",
			zap.String("lesson_id", lessonID), zap.Error(err))
		return &PersistError{LessonID: lessonID, Err: err}
	}
	return err
}

// send 同一视图一次只有一个保存在途，载荷为已确认集合加上本课时，
// 失败的保存不会把其他未确认的课时带到服务端。
func (t *LessonTracker) send(ctx context.Context, lessonID string) error {
	select {
	case t.sendSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.sendSem }()

	t.mu.Lock()
	payload := make([]string, 0, len(t.confirmed)+1)
	for _, l := range t.lessons {
		if t.confirmed[l.ID] || l.ID == lessonID {
			payload = append(payload, l.ID)
		}
	}
	t.mu.Unlock()

	if err := t.persister.PersistLessonCompletion(ctx, t.course.ID, payload); err != nil {
		return err
	}
	t.mu.Lock()
	t.confirmed[lessonID] = true
	t.mu.Unlock()
	return nil
}

// Close 视图销毁，之后到达的保存结果一律丢弃
func (t *LessonTracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

func (t *LessonTracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *LessonTracker) IsCompleted(lessonID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed[lessonID]
}

// CompletedLessonIDs 按文档顺序返回已完成课时
func (t *LessonTracker) CompletedLessonIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedInOrderLocked()
}

func (t *LessonTracker) completedInOrderLocked() []string {
	ids := make([]string, 0, len(t.completed))
	for _, l := range t.lessons {
		if t.completed[l.ID] {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func (t *LessonTracker) ProgressPercent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return model.Percent(len(t.completed), len(t.lessons))
}

// CurrentLesson 当前课时，ID 未知时返回 false
func (t *LessonTracker) CurrentLesson() (model.Lesson, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.course.LessonIndex(t.current); i >= 0 {
		return t.lessons[i], true
	}
	return model.Lesson{}, false
}

func (t *LessonTracker) Snapshot() LessonState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := LessonState{
		CourseID:           t.course.ID,
		CurrentLessonID:    t.current,
		CompletedLessonIDs: t.completedInOrderLocked(),
		PendingLessonIDs:   []string{},
		TotalLessons:       len(t.lessons),
		ProgressPercent:    model.Percent(len(t.completed), len(t.lessons)),
	}
	for _, l := range t.lessons {
		if t.pending[l.ID] {
			state.PendingLessonIDs = append(state.PendingLessonIDs, l.ID)
		}
	}
	if i := t.course.LessonIndex(t.current); i >= 0 {
		lesson := t.lessons[i]
		state.CurrentLesson = &lesson
		if i > 0 {
			state.PreviousLessonID = t.lessons[i-1].ID
		}
		if i < len(t.lessons)-1 {
			state.NextLessonID = t.lessons[i+1].ID
		}
	}
	return state
}

// completion 标记一个课时完成的乐观更新
type completion struct {
	tracker  *LessonTracker
	lessonID string
}

func (c *completion) apply() bool {
	t := c.tracker
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.completed[c.lessonID] {
		return false
	}
	t.completed[c.lessonID] = true
	t.pending[c.lessonID] = true
	return true
}

func (c *completion) confirm() error {
	t := c.tracker
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, c.lessonID)
	if t.closed {
		return ErrClosed
	}
	// 只有用户仍停留在该课时才自动前进，最后一课不回绕
	if t.current == c.lessonID {
		if i := t.course.LessonIndex(c.lessonID); i >= 0 && i < len(t.lessons)-1 {
			t.current = t.lessons[i+1].ID
		}
	}
	return nil
}

func (c *completion) rollback() error {
	t := c.tracker
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, c.lessonID)
	if t.closed {
		return ErrClosed
	}
	delete(t.completed, c.lessonID)
	return nil
}
