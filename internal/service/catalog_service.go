package service

import (
	"context"
	"coursemaster/internal/cache"
	"coursemaster/internal/catalog"
	"coursemaster/internal/gateway"
	"coursemaster/internal/model"
	"coursemaster/internal/util"
	"coursemaster/pkg/monitoring"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// 浏览请求只在课程变化或快照过旧时重写快照，常规刷新交给定时任务
const snapshotMaxAge = 5 * time.Minute

type CatalogService struct {
	gw       gateway.Gateway
	snapshot *cache.CatalogCache
	pageSize atomic.Int64
	log      *zap.Logger
}

func NewCatalogService(gw gateway.Gateway, snapshot *cache.CatalogCache, pageSize int, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CatalogService{gw: gw, snapshot: snapshot, log: log}
	s.SetPageSize(pageSize)
	return s
}

// SetPageSize 配置热更新时调用
func (s *CatalogService) SetPageSize(n int) {
	if n <= 0 {
		n = catalog.DefaultPageSize
	}
	s.pageSize.Store(int64(n))
}

func (s *CatalogService) PageSize() int {
	return int(s.pageSize.Load())
}

// BrowseResult 目录页渲染所需数据
type BrowseResult struct {
	catalog.Page
	Params        catalog.Params   `json:"params"`
	Markers       []catalog.Marker `json:"markers"`
	ActiveFilters int              `json:"activeFilters"`
	Source        string           `json:"source"`
}

// Browse 获取课程并执行目录查询；上游失败时使用最近一次快照，再失败则为空列表，从不返回错误
func (s *CatalogService) Browse(ctx context.Context, params catalog.Params) *BrowseResult {
	params.PageSize = s.PageSize()
	params = params.Normalize()

	courses, source := s.Courses(ctx)
	page := catalog.Query(courses, params)

	return &BrowseResult{
		Page:          page,
		Params:        params,
		Markers:       catalog.Markers(page.Page, page.TotalPages),
		ActiveFilters: params.ActiveFilters(),
		Source:        source,
	}
}

// Courses 带兜底的课程列表，第二个返回值是数据来源
func (s *CatalogService) Courses(ctx context.Context) ([]model.Course, string) {
	courses, err := s.gw.FetchCourses(ctx)
	if err == nil {
		s.snapshot.StoreIfStale(ctx, courses, snapshotMaxAge)
		monitoring.CatalogQueries.WithLabelValues(monitoring.SourceLive).Inc()
		return courses, monitoring.SourceLive
	}

	monitoring.CatalogFallbacks.Inc()
	s.log.Warn("Fetch courses failed, falling back to snapshot", zap.Error(err))
	if snap, updatedAt, ok := s.snapshot.Load(ctx); ok {
		s.log.Info("Serving catalog snapshot", zap.Time("updated_at", updatedAt), zap.Int("courses", len(snap)))
		monitoring.CatalogQueries.WithLabelValues(monitoring.SourceSnapshot).Inc()
		return snap, monitoring.SourceSnapshot
	}
	monitoring.CatalogQueries.WithLabelValues(monitoring.SourceEmpty).Inc()
	return []model.Course{}, monitoring.SourceEmpty
}

// Refresh 刷新快照，由定时任务调用
func (s *CatalogService) Refresh(ctx context.Context) error {
	courses, err := s.gw.FetchCourses(ctx)
	if err != nil {
		return err
	}
	s.snapshot.Store(ctx, courses)
	s.log.Debug("Catalog snapshot refreshed", zap.Int("courses", len(courses)))
	return nil
}

// Invalidate 课程被管理员修改后丢弃进程内快照
func (s *CatalogService) Invalidate() {
	s.snapshot.Invalidate()
}

// CourseDetail 课程详情及派生字段
type CourseDetail struct {
	model.Course
	DiscountPercent int `json:"discountPercent"`
	ModuleCount     int `json:"moduleCount"`
	TotalLessons    int `json:"totalLessons"`
}

func NewCourseDetail(c *model.Course) *CourseDetail {
	return &CourseDetail{
		Course:          *c,
		DiscountPercent: c.DiscountPercent(),
		ModuleCount:     len(c.Syllabus),
		TotalLessons:    len(c.AllLessons()),
	}
}

// Course 课程详情；上游不可用时从快照中查找
func (s *CatalogService) Course(ctx context.Context, id string) (*CourseDetail, error) {
	course, err := s.gw.FetchCourse(ctx, id)
	if err == nil {
		return NewCourseDetail(course), nil
	}
	if errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	s.log.Warn("Fetch course failed, looking up snapshot", zap.String("course_id", id), zap.Error(err))
	if snap, _, ok := s.snapshot.Load(ctx); ok {
		for i := range snap {
			if snap[i].ID == id {
				return NewCourseDetail(&snap[i]), nil
			}
		}
	}
	return nil, err
}
