package gateway

import (
	"context"
	"coursemaster/internal/model"
	"coursemaster/internal/repository"
	"coursemaster/internal/util"
	"coursemaster/pkg/tracing"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store 基于数据库的网关
type Store struct {
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	quizzes     *repository.QuizRepository
	log         *zap.Logger
}

func NewStore(courses *repository.CourseRepository, enrollments *repository.EnrollmentRepository, quizzes *repository.QuizRepository, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		courses:     courses,
		enrollments: enrollments,
		quizzes:     quizzes,
		log:         log,
	}
}

func (s *Store) FetchCourses(ctx context.Context) (courses []model.Course, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.store.FetchCourses")
	defer func() { tracing.End(span, err) }()

	return s.courses.FindAll(ctx)
}

func (s *Store) FetchCourse(ctx context.Context, courseID string) (course *model.Course, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.store.FetchCourse", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	course, err = s.courses.FindByID(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

func (s *Store) FetchEnrollments(ctx context.Context, userID uint) (enrollments []model.Enrollment, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.store.FetchEnrollments", attribute.Int64("user.id", int64(userID)))
	defer func() { tracing.End(span, err) }()

	return s.enrollments.FindByUser(ctx, userID)
}

func (s *Store) Enroll(ctx context.Context, userID uint, courseID string) (enrollment *model.Enrollment, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.store.Enroll", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	if _, err = s.FetchCourse(ctx, courseID); err != nil {
		return nil, err
	}
	enrollment, err = s.enrollments.Create(ctx, userID, courseID)
	if errors.Is(err, repository.ErrAlreadyEnrolled) {
		return enrollment, nil
	}
	return enrollment, err
}

func (s *Store) PersistLessonCompletion(ctx context.Context, userID uint, courseID string, completed []string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.store.PersistLessonCompletion",
		attribute.String("course.id", courseID),
		attribute.Int("lessons.completed", len(completed)),
	)
	defer func() { tracing.End(span, err) }()

	course, err := s.FetchCourse(ctx, courseID)
	if err != nil {
		return err
	}
	_, dropped, err := s.enrollments.UpdateCompletedLessons(ctx, userID, course, completed)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotEnrolled
	}
	if err != nil {
		return err
	}
	if len(dropped) > 0 {
		s.log.Warn("Dropped unknown lesson ids on persist",
			zap.Uint("user_id", userID),
			zap.String("course_id", courseID),
			zap.Strings("lesson_ids", dropped),
		)
	}
	return nil
}

func (s *Store) FetchQuizzes(ctx context.Context, courseID string) (quizzes []model.Quiz, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.store.FetchQuizzes", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	return s.quizzes.FindByCourse(ctx, courseID)
}
