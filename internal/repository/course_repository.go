package repository

import (
	"context"
	"coursemaster/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// FindAll 目录过滤、排序和分页由 catalog 引擎在内存中完成
func (r *CourseRepository) FindAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Save(course).Error
}

func (r *CourseRepository) UpdateThumbnail(ctx context.Context, id, url string) error {
	res := r.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Update("thumbnail", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 同时删除课程的测验、作业和选课记录
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Course{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Quiz{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error
	})
}

func (r *CourseRepository) IncrementEnrolled(tx *gorm.DB, id string) error {
	return tx.Model(&model.Course{}).
		Where("id = ?", id).
		Update("enrolled_count", gorm.Expr("enrolled_count + ?", 1)).
		Error
}

func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Course{}).Count(&count).Error
	return count, err
}
