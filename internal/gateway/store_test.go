package gateway

import (
	"context"
	"coursemaster/internal/repository"
	"coursemaster/internal/testutil"
	"coursemaster/internal/util"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db := testutil.NewDB(t)
	courses := repository.NewCourseRepository(db)
	c := testutil.Course("c1")
	require.NoError(t, courses.Create(context.Background(), &c))
	q := testutil.Quiz("q1", "c1")
	require.NoError(t, repository.NewQuizRepository(db).Create(context.Background(), &q))
	return NewStore(courses, repository.NewEnrollmentRepository(db, courses), repository.NewQuizRepository(db), nil)
}

func TestStoreEnrollAndPersist(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.PersistLessonCompletion(ctx, 1, "c1", []string{"c1-l1"})
	assert.True(t, errors.Is(err, util.ErrNotEnrolled))

	e, err := s.Enroll(ctx, 1, "c1")
	require.NoError(t, err)
	again, err := s.Enroll(ctx, 1, "c1")
	require.NoError(t, err)
	assert.Equal(t, e.ID, again.ID)

	require.NoError(t, s.PersistLessonCompletion(ctx, 1, "c1", []string{"c1-l2", "c1-l1"}))
	list, err := s.FetchEnrollments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"c1-l1", "c1-l2"}, list[0].CompletedLessons)
	assert.Equal(t, 50, list[0].Progress)
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.FetchCourse(ctx, "nope")
	assert.True(t, errors.Is(err, util.ErrCourseNotFound))
	_, err = s.Enroll(ctx, 1, "nope")
	assert.True(t, errors.Is(err, util.ErrNotFound))

	quizzes, err := s.FetchQuizzes(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, quizzes, 1)
}
