package service

import (
	"context"
	"coursemaster/internal/model"
	"coursemaster/internal/util"
)

// RecommendedCount 仪表盘推荐课程数
const RecommendedCount = 3

type DashboardService struct {
	catalog     *CatalogService
	enrollments *EnrollmentService
}

func NewDashboardService(catalog *CatalogService, enrollments *EnrollmentService) *DashboardService {
	return &DashboardService{catalog: catalog, enrollments: enrollments}
}

type EnrolledCourse struct {
	Course           *model.Course `json:"course"`
	Progress         int           `json:"progress"`
	CompletedLessons []string      `json:"completedLessons"`
	EnrolledAt       string        `json:"enrolledAt"`
}

type Dashboard struct {
	Enrolled        []EnrolledCourse `json:"enrolled"`
	EnrolledCount   int              `json:"enrolledCount"`
	CompletedCount  int              `json:"completedCount"`
	AverageProgress int              `json:"averageProgress"`
	Recommended     []model.Course   `json:"recommended"`
}

func (s *DashboardService) GetUserDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	enrollments, err := s.enrollments.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, _ := s.catalog.Courses(ctx)

	byID := make(map[string]*model.Course, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
	}

	d := &Dashboard{
		Enrolled:    make([]EnrolledCourse, 0, len(enrollments)),
		Recommended: []model.Course{},
	}
	enrolled := make(map[string]bool, len(enrollments))
	total := 0
	for _, e := range enrollments {
		enrolled[e.CourseID] = true
		total += e.Progress
		if e.Progress >= 100 {
			d.CompletedCount++
		}
		d.Enrolled = append(d.Enrolled, EnrolledCourse{
			Course:           byID[e.CourseID],
			Progress:         e.Progress,
			CompletedLessons: e.CompletedLessons,
			EnrolledAt:       e.EnrolledAt.Format(util.DateFormat),
		})
	}
	d.EnrolledCount = len(enrollments)
	if len(enrollments) > 0 {
		d.AverageProgress = model.Percent(total, 100*len(enrollments))
	}

	for _, c := range courses {
		if len(d.Recommended) == RecommendedCount {
			break
		}
		if !enrolled[c.ID] {
			d.Recommended = append(d.Recommended, c)
		}
	}
	return d, nil
}
