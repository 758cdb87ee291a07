package session

import (
	"context"
	"coursemaster/internal/model"
	"coursemaster/internal/progress"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(courseID string) *progress.LessonTracker {
	course := &model.Course{
		UUIDBase: model.UUIDBase{ID: courseID},
		Syllabus: []model.Module{{ID: "m", Lessons: []model.Lesson{{ID: "l1"}, {ID: "l2"}}}},
	}
	noop := progress.PersisterFunc(func(context.Context, string, []string) error { return nil })
	return progress.NewLessonTracker(course, noop, nil)
}

func TestRegistryOpenReusesSession(t *testing.T) {
	r := NewRegistry()
	a := r.Open(1)
	b := r.Open(1)
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())

	_, ok := r.Get(2)
	assert.False(t, ok)
}

func TestTrackerOrCreate(t *testing.T) {
	s := NewRegistry().Open(1)

	first, created := s.TrackerOrCreate("c1", func() *progress.LessonTracker { return newTracker("c1") })
	assert.True(t, created)
	second, created := s.TrackerOrCreate("c1", func() *progress.LessonTracker { return newTracker("c1") })
	assert.False(t, created)
	assert.Same(t, first, second)

	assert.True(t, s.CloseTracker("c1"))
	assert.True(t, first.Closed())
	assert.Nil(t, s.Tracker("c1"))
	assert.False(t, s.CloseTracker("c1"))
}

func TestRegistryCloseTearsDownSession(t *testing.T) {
	r := NewRegistry()
	s := r.Open(7)
	tracker, _ := s.TrackerOrCreate("c1", func() *progress.LessonTracker { return newTracker("c1") })
	attempt := progress.NewQuizAttempt(model.Quiz{UUIDBase: model.UUIDBase{ID: "q1"}}, nil)
	s.StartAttempt(attempt)
	require.Same(t, attempt, s.Attempt("q1"))

	r.Close(7)

	assert.True(t, tracker.Closed())
	assert.Nil(t, s.Attempt("q1"))
	_, ok := r.Get(7)
	assert.False(t, ok)

	// 已关闭的会话不再接收新视图
	late, _ := s.TrackerOrCreate("c2", func() *progress.LessonTracker { return newTracker("c2") })
	assert.True(t, late.Closed())
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry()
	t1, _ := r.Open(1).TrackerOrCreate("c", func() *progress.LessonTracker { return newTracker("c") })
	t2, _ := r.Open(2).TrackerOrCreate("c", func() *progress.LessonTracker { return newTracker("c") })

	r.CloseAll()

	assert.True(t, t1.Closed())
	assert.True(t, t2.Closed())
	assert.Equal(t, 0, r.Len())
}

func TestRegistryEvictIdle(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	idle := r.Open(1)
	tracker, _ := idle.TrackerOrCreate("c", func() *progress.LessonTracker { return newTracker("c") })
	idle.StartAttempt(progress.NewQuizAttempt(model.Quiz{UUIDBase: model.UUIDBase{ID: "q1"}}, nil))
	r.Open(2)

	now = now.Add(90 * time.Minute)
	_, ok := r.Get(2)
	require.True(t, ok)
	assert.Equal(t, now, r.Open(2).LastUsed())

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 0, r.EvictIdle(0))
	assert.Equal(t, 1, r.EvictIdle(2*time.Hour))

	_, ok = r.Get(1)
	assert.False(t, ok)
	assert.True(t, tracker.Closed())
	assert.Nil(t, idle.Attempt("q1"))
	assert.ErrorIs(t, tracker.MarkCurrentComplete(context.Background()), progress.ErrClosed)

	_, ok = r.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())

	// 被回收的用户再次访问时得到新会话
	assert.NotSame(t, idle, r.Open(1))
}
