package service

import (
	"context"
	"coursemaster/internal/model"
	"coursemaster/internal/repository"
	"coursemaster/internal/util"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AssignmentService struct {
	repo     *repository.AssignmentRepository
	validate *validator.Validate
	log      *zap.Logger
}

func NewAssignmentService(repo *repository.AssignmentRepository, log *zap.Logger) *AssignmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssignmentService{repo: repo, validate: validator.New(), log: log}
}

// AssignmentView 作业及当前用户的提交
type AssignmentView struct {
	Assignment *model.Assignment           `json:"assignment"`
	Submission *model.AssignmentSubmission `json:"submission,omitempty"`
}

func (s *AssignmentService) find(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	}
	return a, err
}

func (s *AssignmentService) Get(ctx context.Context, userID uint, id string) (*AssignmentView, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &AssignmentView{Assignment: a}
	sub, err := s.repo.FindSubmission(ctx, id, userID)
	switch {
	case err == nil:
		view.Submission = sub
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return view, nil
}

// ValidateSubmission link 必须是 http(s) 绝对地址，text 不能为空白
func (s *AssignmentService) ValidateSubmission(kind model.SubmissionType, content string) error {
	switch kind {
	case model.SubmissionLink:
		if err := s.validate.Var(strings.TrimSpace(content), "required,http_url"); err != nil {
			return fmt.Errorf("%w: link must be a valid http(s) URL", util.ErrInvalidSubmission)
		}
	case model.SubmissionText:
		if strings.TrimSpace(content) == "" {
			return fmt.Errorf("%w: text must not be blank", util.ErrInvalidSubmission)
		}
	default:
		return fmt.Errorf("%w: unknown submission type %q", util.ErrInvalidSubmission, kind)
	}
	return nil
}

// Submit 每个用户每个作业只能提交一次
func (s *AssignmentService) Submit(ctx context.Context, userID uint, id string, kind model.SubmissionType, content string) (*model.AssignmentSubmission, error) {
	if err := s.ValidateSubmission(kind, content); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindSubmission(ctx, id, userID); err == nil {
		return nil, util.ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sub := &model.AssignmentSubmission{
		AssignmentID: id,
		UserID:       userID,
		Type:         kind,
		Content:      strings.TrimSpace(content),
		SubmittedAt:  time.Now(),
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadySubmitted
		}
		return nil, err
	}
	s.log.Info("Assignment submitted", zap.Uint("user_id", userID), zap.String("assignment_id", id))
	return sub, nil
}

func (s *AssignmentService) Create(ctx context.Context, a *model.Assignment) error {
	if strings.TrimSpace(a.Title) == "" || a.CourseID == "" {
		return fmt.Errorf("%w: title and course are required", util.ErrValidation)
	}
	a.ID = ""
	return s.repo.Create(ctx, a)
}

func (s *AssignmentService) Grade(ctx context.Context, submissionID string, grade int, feedback string) (*model.AssignmentSubmission, error) {
	if grade < 0 || grade > 100 {
		return nil, util.ErrInvalidGrade
	}
	err := s.repo.UpdateGrade(ctx, submissionID, grade, feedback)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.repo.FindSubmissionByID(ctx, submissionID)
}

func (s *AssignmentService) ListSubmissions(ctx context.Context, assignmentID string, page, limit int) (*util.PageResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, total, err := s.repo.ListSubmissions(ctx, assignmentID, page, limit)
	if err != nil {
		return nil, err
	}
	return &util.PageResponse{List: list, Total: total, Page: page, Limit: limit}, nil
}
