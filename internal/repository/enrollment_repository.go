package repository

import (
	"context"
	"coursemaster/internal/model"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAlreadyEnrolled = errors.New("already enrolled")

type EnrollmentRepository struct {
	DB      *gorm.DB
	courses *CourseRepository
}

func NewEnrollmentRepository(db *gorm.DB, courses *CourseRepository) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db, courses: courses}
}

func (r *EnrollmentRepository) FindByUser(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) Find(ctx context.Context, userID uint, courseID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create 新建选课记录并增加课程报名人数；重复选课返回 ErrAlreadyEnrolled 和已有记录
func (r *EnrollmentRepository) Create(ctx context.Context, userID uint, courseID string) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
		EnrolledAt:       time.Now(),
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
		if err == nil {
			*enrollment = existing
			return ErrAlreadyEnrolled
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}
		return r.courses.IncrementEnrolled(tx, courseID)
	})
	if err != nil && !errors.Is(err, ErrAlreadyEnrolled) {
		return nil, err
	}
	return enrollment, err
}

// UpdateCompletedLessons 在事务内按课程大纲重算并保存已完成课时
func (r *EnrollmentRepository) UpdateCompletedLessons(ctx context.Context, userID uint, course *model.Course, completed []string) (*model.Enrollment, []string, error) {
	var enrollment model.Enrollment
	var dropped []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND course_id = ?", userID, course.ID).
			First(&enrollment).Error
		if err != nil {
			return err
		}
		dropped = enrollment.SetCompletedLessons(course, completed)
		return tx.Model(&enrollment).Select("completed_lessons", "progress").Updates(&enrollment).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &enrollment, dropped, nil
}

func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).Count(&count).Error
	return count, err
}

// AverageProgress 全站平均进度
func (r *EnrollmentRepository) AverageProgress(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).Select("AVG(progress)").Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// CountBatches 有学员的班级数
func (r *EnrollmentRepository) CountBatches(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("batch_id <> ''").
		Distinct("batch_id").
		Count(&count).Error
	return count, err
}
