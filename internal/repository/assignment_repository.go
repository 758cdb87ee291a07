package repository

import (
	"context"
	"coursemaster/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.DB.WithContext(ctx).Create(assignment).Error
}

func (r *AssignmentRepository) FindSubmission(ctx context.Context, assignmentID string, userID uint) (*model.AssignmentSubmission, error) {
	var submission model.AssignmentSubmission
	err := r.DB.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *AssignmentRepository) FindSubmissionByID(ctx context.Context, id string) (*model.AssignmentSubmission, error) {
	var submission model.AssignmentSubmission
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *AssignmentRepository) CreateSubmission(ctx context.Context, submission *model.AssignmentSubmission) error {
	return r.DB.WithContext(ctx).Create(submission).Error
}

func (r *AssignmentRepository) UpdateGrade(ctx context.Context, id string, grade int, feedback string) error {
	res := r.DB.WithContext(ctx).Model(&model.AssignmentSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"grade": grade, "feedback": feedback})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListSubmissions assignmentID 为空时返回全部
func (r *AssignmentRepository) ListSubmissions(ctx context.Context, assignmentID string, page, limit int) ([]model.AssignmentSubmission, int64, error) {
	var submissions []model.AssignmentSubmission
	var total int64

	query := r.DB.WithContext(ctx).Model(&model.AssignmentSubmission{})
	if assignmentID != "" {
		query = query.Where("assignment_id = ?", assignmentID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("submitted_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&submissions).Error
	return submissions, total, err
}

func (r *AssignmentRepository) CountSubmissions(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.AssignmentSubmission{}).Count(&count).Error
	return count, err
}
