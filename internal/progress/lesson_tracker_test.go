package progress

import (
	"context"
	"coursemaster/internal/model"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersister struct {
	mu      sync.Mutex
	calls   [][]string
	err     error
	release chan struct{}
	started chan struct{}
}

func (f *fakePersister) PersistLessonCompletion(ctx context.Context, courseID string, completed []string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), completed...))
	err := f.err
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return err
}

func (f *fakePersister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func fourLessonCourse() *model.Course {
	return &model.Course{
		UUIDBase: model.UUIDBase{ID: "course-1"},
		Title:    "Go",
		Syllabus: []model.Module{
			{ID: "m1", Lessons: []model.Lesson{{ID: "l1", Title: "Intro"}, {ID: "l2", Title: "Types"}}},
			{ID: "m2", Lessons: []model.Lesson{{ID: "l3", Title: "Funcs"}, {ID: "l4", Title: "Wrap up"}}},
		},
	}
}

func enrollment(ids ...string) *model.Enrollment {
	return &model.Enrollment{UUIDBase: model.UUIDBase{ID: "e1"}, CourseID: "course-1", CompletedLessons: ids}
}

func TestInitializePointsAtFirstIncomplete(t *testing.T) {
	tests := []struct {
		name      string
		completed []string
		want      string
	}{
		{name: "none complete", want: "l1"},
		{name: "first two complete", completed: []string{"l1", "l2"}, want: "l3"},
		{name: "gap", completed: []string{"l1", "l3"}, want: "l2"},
		{name: "all complete", completed: []string{"l1", "l2", "l3", "l4"}, want: "l1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewLessonTracker(fourLessonCourse(), &fakePersister{}, nil)
			tr.Initialize(enrollment(tt.completed...))
			assert.Equal(t, tt.want, tr.Snapshot().CurrentLessonID)
		})
	}
}

func TestInitializeDropsUnknownLessons(t *testing.T) {
	tr := NewLessonTracker(fourLessonCourse(), &fakePersister{}, nil)
	tr.Initialize(enrollment("l2", "ghost"))

	assert.Equal(t, []string{"l2"}, tr.CompletedLessonIDs())
	assert.Equal(t, 25, tr.ProgressPercent())
}

func TestReinitializeKeepsUserSelection(t *testing.T) {
	tr := NewLessonTracker(fourLessonCourse(), &fakePersister{}, nil)
	tr.Initialize(enrollment())
	require.NoError(t, tr.SelectLesson("l3"))

	tr.Initialize(enrollment("l1"))

	assert.Equal(t, "l3", tr.Snapshot().CurrentLessonID)
	assert.Equal(t, []string{"l1"}, tr.CompletedLessonIDs())
}

func TestSelectUnknownLesson(t *testing.T) {
	tr := NewLessonTracker(fourLessonCourse(), &fakePersister{}, nil)
	tr.Initialize(nil)

	require.NoError(t, tr.SelectLesson("nope"))
	_, ok := tr.CurrentLesson()
	assert.False(t, ok)
	assert.Nil(t, tr.Snapshot().CurrentLesson)

	assert.ErrorIs(t, tr.MarkCurrentComplete(context.Background()), ErrLessonNotFound)
}

func TestProgressPercent(t *testing.T) {
	tr := NewLessonTracker(fourLessonCourse(), &fakePersister{}, nil)
	tr.Initialize(enrollment("l1"))
	assert.Equal(t, 25, tr.ProgressPercent())

	empty := NewLessonTracker(&model.Course{UUIDBase: model.UUIDBase{ID: "x"}}, &fakePersister{}, nil)
	empty.Initialize(nil)
	assert.Equal(t, 0, empty.ProgressPercent())
	assert.Equal(t, "", empty.Snapshot().CurrentLessonID)
}

func TestMarkCurrentCompleteAdvances(t *testing.T) {
	p := &fakePersister{}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment("l1"))

	require.NoError(t, tr.MarkCurrentComplete(context.Background()))

	assert.Equal(t, [][]string{{"l1", "l2"}}, p.calls)
	assert.Equal(t, "l3", tr.Snapshot().CurrentLessonID)
	assert.Equal(t, 50, tr.ProgressPercent())
}

func TestMarkCompleteStopsAtLastLesson(t *testing.T) {
	tr := NewLessonTracker(fourLessonCourse(), &fakePersister{}, nil)
	tr.Initialize(enrollment("l1", "l2", "l3"))
	require.Equal(t, "l4", tr.Snapshot().CurrentLessonID)

	require.NoError(t, tr.MarkCurrentComplete(context.Background()))

	state := tr.Snapshot()
	assert.Equal(t, "l4", state.CurrentLessonID)
	assert.Equal(t, 100, state.ProgressPercent)
	assert.Empty(t, state.NextLessonID)
}

func TestMarkCurrentCompleteIsIdempotent(t *testing.T) {
	p := &fakePersister{}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment())
	require.NoError(t, tr.SelectLesson("l4"))

	require.NoError(t, tr.MarkCurrentComplete(context.Background()))
	assert.ErrorIs(t, tr.MarkCurrentComplete(context.Background()), ErrAlreadyCompleted)

	assert.Equal(t, 1, p.callCount())
	assert.Equal(t, []string{"l4"}, tr.CompletedLessonIDs())
}

func TestConcurrentDuplicateCompletionCoalesces(t *testing.T) {
	p := &fakePersister{release: make(chan struct{}), started: make(chan struct{}, 1)}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment())

	done := make(chan error, 1)
	go func() { done <- tr.MarkCurrentComplete(context.Background()) }()
	<-p.started

	// 第一次保存尚未返回
	assert.Equal(t, []string{"l1"}, tr.Snapshot().PendingLessonIDs)
	assert.ErrorIs(t, tr.MarkCurrentComplete(context.Background()), ErrAlreadyCompleted)

	close(p.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, p.callCount())
	assert.Equal(t, []string{"l1"}, tr.CompletedLessonIDs())
	assert.Empty(t, tr.Snapshot().PendingLessonIDs)
}

func TestMarkCurrentCompleteRollsBack(t *testing.T) {
	cause := errors.New("network down")
	p := &fakePersister{err: cause}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment("l1"))
	before := tr.CompletedLessonIDs()

	err := tr.MarkCurrentComplete(context.Background())

	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "l2", perr.LessonID)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, before, tr.CompletedLessonIDs())
	assert.Equal(t, "l2", tr.Snapshot().CurrentLessonID)
	assert.Equal(t, 25, tr.ProgressPercent())

	// 同一操作可以重试
	p.err = nil
	require.NoError(t, tr.MarkCurrentComplete(context.Background()))
	assert.Equal(t, []string{"l1", "l2"}, tr.CompletedLessonIDs())
}

// gatedPersister 按调用顺序阻塞，直到对应通道给出结果
type gatedPersister struct {
	mu       sync.Mutex
	gates    []chan error
	payloads [][]string
}

func (g *gatedPersister) PersistLessonCompletion(ctx context.Context, courseID string, completed []string) error {
	g.mu.Lock()
	gate := g.gates[len(g.payloads)]
	g.payloads = append(g.payloads, append([]string(nil), completed...))
	g.mu.Unlock()
	return <-gate
}

func (g *gatedPersister) sent() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]string(nil), g.payloads...)
}

// startTwoCompletions 完成 l1，保存中切到 l3 再完成；第二次保存排在第一次之后
func startTwoCompletions(t *testing.T, tr *LessonTracker, p *gatedPersister) (first, second chan error) {
	t.Helper()
	first = make(chan error, 1)
	go func() { first <- tr.MarkCurrentComplete(context.Background()) }()
	require.Eventually(t, func() bool { return len(p.sent()) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, tr.SelectLesson("l3"))
	second = make(chan error, 1)
	go func() { second <- tr.MarkCurrentComplete(context.Background()) }()
	require.Eventually(t, func() bool { return len(tr.Snapshot().PendingLessonIDs) == 2 }, time.Second, time.Millisecond)

	// 第一次保存返回前不会发出第二次
	assert.Len(t, p.sent(), 1)
	return first, second
}

func TestRollbackLeavesOtherCompletions(t *testing.T) {
	p := &gatedPersister{gates: []chan error{make(chan error), make(chan error)}}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment())
	first, second := startTwoCompletions(t, tr, p)

	p.gates[0] <- errors.New("boom")
	var perr *PersistError
	require.ErrorAs(t, <-first, &perr)
	assert.Equal(t, "l1", perr.LessonID)

	require.Eventually(t, func() bool { return len(p.sent()) == 2 }, time.Second, time.Millisecond)
	p.gates[1] <- nil
	require.NoError(t, <-second)

	// 失败的 l1 没有随 l3 的保存写入服务端
	assert.Equal(t, [][]string{{"l1"}, {"l3"}}, p.sent())
	assert.Equal(t, []string{"l3"}, tr.CompletedLessonIDs())
	assert.Equal(t, "l4", tr.Snapshot().CurrentLessonID)
}

func TestQueuedSaveCarriesConfirmedLessons(t *testing.T) {
	p := &gatedPersister{gates: []chan error{make(chan error), make(chan error)}}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment())
	first, second := startTwoCompletions(t, tr, p)

	p.gates[0] <- nil
	require.NoError(t, <-first)
	require.Eventually(t, func() bool { return len(p.sent()) == 2 }, time.Second, time.Millisecond)
	p.gates[1] <- nil
	require.NoError(t, <-second)

	// 后一次保存包含已确认的 l1，不会覆盖掉它
	assert.Equal(t, [][]string{{"l1"}, {"l1", "l3"}}, p.sent())
	assert.Equal(t, []string{"l1", "l3"}, tr.CompletedLessonIDs())
}

func TestPayloadExcludesRolledBackLessons(t *testing.T) {
	p := &fakePersister{err: errors.New("down")}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment("l1"))

	require.Error(t, tr.MarkCurrentComplete(context.Background()))
	p.err = nil
	require.NoError(t, tr.SelectLesson("l3"))
	require.NoError(t, tr.MarkCurrentComplete(context.Background()))

	assert.Equal(t, [][]string{{"l1", "l2"}, {"l1", "l3"}}, p.calls)
}

func TestReopenPreviewKeepsCompletions(t *testing.T) {
	p := &fakePersister{}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(nil)
	require.NoError(t, tr.MarkCurrentComplete(context.Background()))
	require.Equal(t, []string{"l1"}, tr.CompletedLessonIDs())

	tr.Initialize(nil)

	assert.Equal(t, []string{"l1"}, tr.CompletedLessonIDs())
	assert.Equal(t, "l2", tr.Snapshot().CurrentLessonID)
	assert.Equal(t, 25, tr.ProgressPercent())
}

func TestCloseDiscardsLateResult(t *testing.T) {
	p := &fakePersister{release: make(chan struct{}), started: make(chan struct{}, 1)}
	tr := NewLessonTracker(fourLessonCourse(), p, nil)
	tr.Initialize(enrollment())

	done := make(chan error, 1)
	go func() { done <- tr.MarkCurrentComplete(context.Background()) }()
	<-p.started

	tr.Close()
	close(p.release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, "l1", tr.Snapshot().CurrentLessonID)
	assert.ErrorIs(t, tr.MarkCurrentComplete(context.Background()), ErrClosed)
	assert.ErrorIs(t, tr.SelectLesson("l2"), ErrClosed)
}

func TestSnapshotNeighbours(t *testing.T) {
	tr := NewLessonTracker(fourLessonCourse(), &fakePersister{}, nil)
	tr.Initialize(enrollment())
	require.NoError(t, tr.SelectLesson("l2"))

	state := tr.Snapshot()
	assert.Equal(t, "l1", state.PreviousLessonID)
	assert.Equal(t, "l3", state.NextLessonID)
	require.NotNil(t, state.CurrentLesson)
	assert.Equal(t, "Types", state.CurrentLesson.Title)
	assert.Equal(t, 4, state.TotalLessons)
}
