package service

import (
	"context"
	"coursemaster/internal/model"
	"coursemaster/internal/util"
	"sync"
	"time"
)

// fakeGateway 内存网关，可注入错误
type fakeGateway struct {
	mu          sync.Mutex
	courses     []model.Course
	enrollments map[uint][]model.Enrollment
	quizzes     map[string][]model.Quiz

	coursesErr error
	persistErr error

	fetchEnrollmentCalls int
	persisted            [][]string
}

func newFakeGateway(courses ...model.Course) *fakeGateway {
	return &fakeGateway{
		courses:     courses,
		enrollments: make(map[uint][]model.Enrollment),
		quizzes:     make(map[string][]model.Quiz),
	}
}

func (g *fakeGateway) FetchCourses(ctx context.Context) ([]model.Course, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.coursesErr != nil {
		return nil, g.coursesErr
	}
	out := make([]model.Course, len(g.courses))
	copy(out, g.courses)
	return out, nil
}

func (g *fakeGateway) FetchCourse(ctx context.Context, courseID string) (*model.Course, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.coursesErr != nil {
		return nil, g.coursesErr
	}
	for i := range g.courses {
		if g.courses[i].ID == courseID {
			c := g.courses[i]
			return &c, nil
		}
	}
	return nil, util.ErrCourseNotFound
}

func (g *fakeGateway) FetchEnrollments(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchEnrollmentCalls++
	return append([]model.Enrollment(nil), g.enrollments[userID]...), nil
}

func (g *fakeGateway) Enroll(ctx context.Context, userID uint, courseID string) (*model.Enrollment, error) {
	if _, err := g.FetchCourse(ctx, courseID); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.enrollments[userID] {
		if e.CourseID == courseID {
			return &e, nil
		}
	}
	e := model.Enrollment{UserID: userID, CourseID: courseID, CompletedLessons: []string{}, EnrolledAt: time.Now()}
	e.ID = model.GenerateUUID()
	g.enrollments[userID] = append(g.enrollments[userID], e)
	return &e, nil
}

func (g *fakeGateway) PersistLessonCompletion(ctx context.Context, userID uint, courseID string, completed []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.persistErr != nil {
		return g.persistErr
	}
	g.persisted = append(g.persisted, append([]string(nil), completed...))
	list := g.enrollments[userID]
	for i := range list {
		if list[i].CourseID != courseID {
			continue
		}
		for _, c := range g.courses {
			if c.ID == courseID {
				list[i].SetCompletedLessons(&c, completed)
			}
		}
	}
	return nil
}

func (g *fakeGateway) FetchQuizzes(ctx context.Context, courseID string) ([]model.Quiz, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]model.Quiz(nil), g.quizzes[courseID]...), nil
}

func (g *fakeGateway) setCoursesErr(err error) {
	g.mu.Lock()
	g.coursesErr = err
	g.mu.Unlock()
}

func (g *fakeGateway) setPersistErr(err error) {
	g.mu.Lock()
	g.persistErr = err
	g.mu.Unlock()
}
