package service

import (
	"context"
	"coursemaster/internal/cache"
	"coursemaster/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	g := newFakeGateway(
		testutil.Course("a"), testutil.Course("b"), testutil.Course("c"),
		testutil.Course("d"), testutil.Course("e"),
	)
	enrollments := NewEnrollmentService(g, cache.NewEnrollmentCache(nil, 0, nil), nil)
	_, err := enrollments.Enroll(ctx, 1, "a")
	require.NoError(t, err)
	_, err = enrollments.Enroll(ctx, 1, "c")
	require.NoError(t, err)
	require.NoError(t, g.PersistLessonCompletion(ctx, 1, "a", []string{"a-l1", "a-l2", "a-l3", "a-l4"}))
	require.NoError(t, g.PersistLessonCompletion(ctx, 1, "c", []string{"c-l1"}))

	s := NewDashboardService(newCatalogService(g), enrollments)
	d, err := s.GetUserDashboard(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, d.EnrolledCount)
	assert.Equal(t, 1, d.CompletedCount)
	// (100 + 25) / 2 = 62.5
	assert.Equal(t, 63, d.AverageProgress)
	require.Len(t, d.Recommended, 3)
	assert.Equal(t, "b", d.Recommended[0].ID)
	assert.Equal(t, "d", d.Recommended[1].ID)
	assert.Equal(t, "e", d.Recommended[2].ID)
	require.NotNil(t, d.Enrolled[0].Course)
}

func TestDashboardEmpty(t *testing.T) {
	g := newFakeGateway()
	s := NewDashboardService(newCatalogService(g), NewEnrollmentService(g, cache.NewEnrollmentCache(nil, 0, nil), nil))
	d, err := s.GetUserDashboard(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 0, d.AverageProgress)
	assert.Empty(t, d.Recommended)
	assert.Empty(t, d.Enrolled)
}

func TestUnenrollNotImplemented(t *testing.T) {
	g := newFakeGateway(testutil.Course("a"))
	s := NewEnrollmentService(g, cache.NewEnrollmentCache(nil, 0, nil), nil)
	assert.Error(t, s.Unenroll(context.Background(), 1, "a"))
}
