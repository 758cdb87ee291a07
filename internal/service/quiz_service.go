package service

import (
	"context"
	"coursemaster/internal/gateway"
	"coursemaster/internal/model"
	"coursemaster/internal/progress"
	"coursemaster/internal/repository"
	"coursemaster/internal/session"
	"coursemaster/internal/util"
	"coursemaster/pkg/monitoring"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	gw       gateway.Gateway
	quizRepo *repository.QuizRepository
	sessions *session.Registry
	log      *zap.Logger
}

func NewQuizService(gw gateway.Gateway, quizRepo *repository.QuizRepository, sessions *session.Registry, log *zap.Logger) *QuizService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizService{gw: gw, quizRepo: quizRepo, sessions: sessions, log: log}
}

// AttemptView 作答页面数据，题目不含正确答案
type AttemptView struct {
	Quiz  model.Quiz            `json:"quiz"`
	State progress.AttemptState `json:"state"`
}

// List 课程测验列表，去掉正确答案
func (s *QuizService) List(ctx context.Context, courseID string) ([]model.Quiz, error) {
	quizzes, err := s.gw.FetchQuizzes(ctx, courseID)
	if err != nil {
		return nil, err
	}
	public := make([]model.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		public = append(public, q.Public())
	}
	return public, nil
}

func (s *QuizService) find(ctx context.Context, courseID, quizID string) (*model.Quiz, error) {
	quizzes, err := s.gw.FetchQuizzes(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		if quizzes[i].ID == quizID {
			return &quizzes[i], nil
		}
	}
	return nil, util.ErrQuizNotFound
}

// Start 每次进入测验都开始新的作答，覆盖之前的作答
func (s *QuizService) Start(ctx context.Context, userID uint, courseID, quizID string) (*AttemptView, error) {
	quiz, err := s.find(ctx, courseID, quizID)
	if err != nil {
		return nil, err
	}
	attempt := progress.NewQuizAttempt(*quiz, s.log)
	s.sessions.Open(userID).StartAttempt(attempt)
	return &AttemptView{Quiz: quiz.Public(), State: attempt.State()}, nil
}

func (s *QuizService) attempt(userID uint, quizID string) (*progress.QuizAttempt, error) {
	sess, ok := s.sessions.Get(userID)
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	attempt := sess.Attempt(quizID)
	if attempt == nil {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *QuizService) State(userID uint, quizID string) (*AttemptView, error) {
	attempt, err := s.attempt(userID, quizID)
	if err != nil {
		return nil, err
	}
	return &AttemptView{Quiz: attempt.Quiz().Public(), State: attempt.State()}, nil
}

// Answer 提交后的修改被静默忽略
func (s *QuizService) Answer(userID uint, quizID string, question, option int) (progress.AttemptState, error) {
	attempt, err := s.attempt(userID, quizID)
	if err != nil {
		return progress.AttemptState{}, err
	}
	if err := attempt.SelectAnswer(question, option); err != nil {
		return progress.AttemptState{}, err
	}
	return attempt.State(), nil
}

func (s *QuizService) Submit(userID uint, quizID string) (*progress.QuizResult, error) {
	attempt, err := s.attempt(userID, quizID)
	if err != nil {
		return nil, err
	}
	first := !attempt.Submitted()
	if err := attempt.Submit(); err != nil {
		return nil, err
	}
	result, err := attempt.Result()
	if err != nil {
		return nil, err
	}
	if first {
		label := monitoring.ResultFailed
		if result.Passed {
			label = monitoring.ResultPassed
		}
		monitoring.QuizSubmissions.WithLabelValues(label).Inc()
		s.log.Info("Quiz submitted",
			zap.Uint("user_id", userID),
			zap.String("quiz_id", quizID),
			zap.Int("percentage", result.Percentage),
			zap.Bool("passed", result.Passed),
		)
	}
	return result, nil
}

func (s *QuizService) Result(userID uint, quizID string) (*progress.QuizResult, error) {
	attempt, err := s.attempt(userID, quizID)
	if err != nil {
		return nil, err
	}
	return attempt.Result()
}

func (s *QuizService) Retry(userID uint, quizID string) (progress.AttemptState, error) {
	attempt, err := s.attempt(userID, quizID)
	if err != nil {
		return progress.AttemptState{}, err
	}
	attempt.Retry()
	return attempt.State(), nil
}

func (s *QuizService) Discard(userID uint, quizID string) error {
	sess, ok := s.sessions.Get(userID)
	if !ok || !sess.DiscardAttempt(quizID) {
		return util.ErrAttemptNotFound
	}
	return nil
}

// 以下为管理员接口，始终读写本服务数据库

func (s *QuizService) Get(ctx context.Context, id string) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	return quiz, err
}

func (s *QuizService) Create(ctx context.Context, quiz *model.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return fmt.Errorf("%w: %w", util.ErrValidation, err)
	}
	if _, err := s.gw.FetchCourse(ctx, quiz.CourseID); err != nil {
		return err
	}
	quiz.ID = ""
	return s.quizRepo.Create(ctx, quiz)
}

func (s *QuizService) Update(ctx context.Context, id string, input *model.Quiz) (*model.Quiz, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	quiz.Title = input.Title
	quiz.ModuleID = input.ModuleID
	quiz.Questions = input.Questions
	if err := quiz.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrValidation, err)
	}
	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) Delete(ctx context.Context, id string) error {
	err := s.quizRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrQuizNotFound
	}
	return err
}
