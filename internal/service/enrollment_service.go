package service

import (
	"context"
	"coursemaster/internal/cache"
	"coursemaster/internal/gateway"
	"coursemaster/internal/model"
	"coursemaster/internal/util"

	"go.uber.org/zap"
)

type EnrollmentService struct {
	gw    gateway.Gateway
	cache *cache.EnrollmentCache
	log   *zap.Logger
}

func NewEnrollmentService(gw gateway.Gateway, cache *cache.EnrollmentCache, log *zap.Logger) *EnrollmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnrollmentService{gw: gw, cache: cache, log: log}
}

func (s *EnrollmentService) List(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	if cached, ok := s.cache.Get(ctx, userID); ok {
		return cached, nil
	}
	enrollments, err := s.gw.FetchEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enrollments == nil {
		enrollments = []model.Enrollment{}
	}
	s.cache.Set(ctx, userID, enrollments)
	return enrollments, nil
}

// Find 未选课时返回 nil, nil
func (s *EnrollmentService) Find(ctx context.Context, userID uint, courseID string) (*model.Enrollment, error) {
	enrollments, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range enrollments {
		if enrollments[i].CourseID == courseID {
			return &enrollments[i], nil
		}
	}
	return nil, nil
}

func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID uint, courseID string) (bool, error) {
	e, err := s.Find(ctx, userID, courseID)
	return e != nil, err
}

// Enroll 付款流程不在本服务范围内，选课立即生效
func (s *EnrollmentService) Enroll(ctx context.Context, userID uint, courseID string) (*model.Enrollment, error) {
	enrollment, err := s.gw.Enroll(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, userID)
	s.log.Info("User enrolled", zap.Uint("user_id", userID), zap.String("course_id", courseID))
	return enrollment, nil
}

func (s *EnrollmentService) Unenroll(ctx context.Context, userID uint, courseID string) error {
	return util.ErrNotImplemented
}

// Invalidate 进度保存成功后调用
func (s *EnrollmentService) Invalidate(ctx context.Context, userID uint) {
	s.cache.Invalidate(ctx, userID)
}
