package service

import (
	"context"
	"coursemaster/internal/cache"
	"coursemaster/internal/catalog"
	"coursemaster/internal/testutil"
	"coursemaster/internal/util"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(g *fakeGateway) *CatalogService {
	return NewCatalogService(g, cache.NewCatalogCache(nil, nil), 6, nil)
}

func TestBrowseLive(t *testing.T) {
	g := newFakeGateway()
	for i := 0; i < 13; i++ {
		g.courses = append(g.courses, testutil.Course(fmt.Sprintf("c%02d", i)))
	}
	s := newCatalogService(g)

	res := s.Browse(context.Background(), catalog.Params{Page: 3})
	assert.Equal(t, "live", res.Source)
	assert.Equal(t, 13, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 6, res.PageSize)
	assert.Len(t, res.Markers, 3)
}

func TestBrowseFallsBackToSnapshot(t *testing.T) {
	g := newFakeGateway(testutil.Course("a"), testutil.Course("b"))
	s := newCatalogService(g)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	g.setCoursesErr(errors.New("network down"))

	res := s.Browse(ctx, catalog.Params{Page: 1})
	assert.Equal(t, "snapshot", res.Source)
	assert.Equal(t, 2, res.Total)

	detail, err := s.Course(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 4, detail.TotalLessons)
	assert.Equal(t, 2, detail.ModuleCount)
}

func TestBrowseKeepsFreshSnapshot(t *testing.T) {
	g := newFakeGateway(testutil.Course("a"))
	snap := cache.NewCatalogCache(nil, nil)
	s := NewCatalogService(g, snap, 6, nil)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx))
	_, refreshed, ok := snap.Load(ctx)
	require.True(t, ok)

	s.Browse(ctx, catalog.Params{Page: 1})
	_, after, _ := snap.Load(ctx)
	assert.Equal(t, refreshed, after)

	// 课程列表变化时浏览请求更新快照
	g.courses = append(g.courses, testutil.Course("b"))
	s.Browse(ctx, catalog.Params{Page: 1})
	courses, _, _ := snap.Load(ctx)
	assert.Len(t, courses, 2)
}

func TestBrowseEmptyWithoutSnapshot(t *testing.T) {
	g := newFakeGateway()
	g.setCoursesErr(errors.New("network down"))
	s := newCatalogService(g)

	res := s.Browse(context.Background(), catalog.Params{Page: 1})
	assert.Equal(t, "empty", res.Source)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.TotalPages)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Markers)
}

func TestCourseNotFound(t *testing.T) {
	s := newCatalogService(newFakeGateway(testutil.Course("a")))
	_, err := s.Course(context.Background(), "zzz")
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestSetPageSize(t *testing.T) {
	g := newFakeGateway()
	for i := 0; i < 10; i++ {
		g.courses = append(g.courses, testutil.Course(fmt.Sprintf("c%d", i)))
	}
	s := newCatalogService(g)
	s.SetPageSize(4)
	assert.Equal(t, 3, s.Browse(context.Background(), catalog.Params{Page: 1}).TotalPages)

	s.SetPageSize(0)
	assert.Equal(t, catalog.DefaultPageSize, s.PageSize())
}
