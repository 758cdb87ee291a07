package service

import (
	"context"
	"coursemaster/internal/gateway"
	"coursemaster/internal/progress"
	"coursemaster/internal/session"
	"coursemaster/internal/util"
	"coursemaster/pkg/monitoring"
	"errors"

	"go.uber.org/zap"
)

// LearningService 学习页面：打开课程视图、切换课时、标记完成
type LearningService struct {
	gw          gateway.Gateway
	enrollments *EnrollmentService
	sessions    *session.Registry
	log         *zap.Logger
}

func NewLearningService(gw gateway.Gateway, enrollments *EnrollmentService, sessions *session.Registry, log *zap.Logger) *LearningService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LearningService{gw: gw, enrollments: enrollments, sessions: sessions, log: log}
}

// lessonPersister 把视图的保存请求转到网关，成功后使选课缓存失效
type lessonPersister struct {
	gw          gateway.Gateway
	enrollments *EnrollmentService
	userID      uint
}

func (p *lessonPersister) PersistLessonCompletion(ctx context.Context, courseID string, completed []string) error {
	if err := p.gw.PersistLessonCompletion(ctx, p.userID, courseID, completed); err != nil {
		return err
	}
	p.enrollments.Invalidate(ctx, p.userID)
	return nil
}

// 未选课的试看课程，进度只保留在视图中
var previewPersister = progress.PersisterFunc(func(context.Context, string, []string) error { return nil })

// Open 打开（或重新进入）课程学习视图。未选课只能打开全部为试看课时的课程。
func (s *LearningService) Open(ctx context.Context, userID uint, courseID string) (progress.LessonState, error) {
	course, err := s.gw.FetchCourse(ctx, courseID)
	if err != nil {
		return progress.LessonState{}, err
	}
	enrollment, err := s.enrollments.Find(ctx, userID, courseID)
	if err != nil {
		return progress.LessonState{}, err
	}
	if enrollment == nil && !course.PreviewOnly() {
		return progress.LessonState{}, util.ErrNotEnrolled
	}

	sess := s.sessions.Open(userID)
	tracker, created := sess.TrackerOrCreate(courseID, func() *progress.LessonTracker {
		var persister progress.Persister = previewPersister
		if enrollment != nil {
			persister = &lessonPersister{gw: s.gw, enrollments: s.enrollments, userID: userID}
		}
		return progress.NewLessonTracker(course, persister, s.log.With(zap.Uint("user_id", userID)))
	})
	tracker.Initialize(enrollment)
	if created {
		s.log.Debug("Learning view opened", zap.Uint("user_id", userID), zap.String("course_id", courseID))
	}
	return tracker.Snapshot(), nil
}

func (s *LearningService) tracker(userID uint, courseID string) (*progress.LessonTracker, error) {
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return nil, util.ErrViewNotOpen
	}
	tracker := sess.Tracker(courseID)
	if tracker == nil || tracker.Closed() {
		return nil, util.ErrViewNotOpen
	}
	return tracker, nil
}

func (s *LearningService) State(userID uint, courseID string) (progress.LessonState, error) {
	tracker, err := s.tracker(userID, courseID)
	if err != nil {
		return progress.LessonState{}, err
	}
	return tracker.Snapshot(), nil
}

func (s *LearningService) Select(userID uint, courseID, lessonID string) (progress.LessonState, error) {
	tracker, err := s.tracker(userID, courseID)
	if err != nil {
		return progress.LessonState{}, err
	}
	if err := tracker.SelectLesson(lessonID); err != nil {
		return progress.LessonState{}, err
	}
	return tracker.Snapshot(), nil
}

// Complete 标记当前课时完成。保存失败时返回回滚后的状态和 *progress.PersistError。
func (s *LearningService) Complete(ctx context.Context, userID uint, courseID string) (progress.LessonState, error) {
	tracker, err := s.tracker(userID, courseID)
	if err != nil {
		return progress.LessonState{}, err
	}

	// 客户端断开不应中断已发出的保存
	err = tracker.MarkCurrentComplete(context.WithoutCancel(ctx))

	var persistErr *progress.PersistError
	switch {
	case errors.Is(err, progress.ErrAlreadyCompleted):
		// 没有发出保存请求，不计入指标
		return tracker.Snapshot(), nil
	case err == nil:
		monitoring.LessonPersists.WithLabelValues(monitoring.OutcomeConfirmed).Inc()
	case errors.As(err, &persistErr):
		monitoring.LessonPersists.WithLabelValues(monitoring.OutcomeRolledBack).Inc()
	case errors.Is(err, progress.ErrClosed):
		monitoring.LessonPersists.WithLabelValues(monitoring.OutcomeDiscarded).Inc()
		return progress.LessonState{}, err
	default:
		return progress.LessonState{}, err
	}
	return tracker.Snapshot(), err
}

// Close 离开学习页面
func (s *LearningService) Close(userID uint, courseID string) bool {
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return false
	}
	return sess.CloseTracker(courseID)
}
