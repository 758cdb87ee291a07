package service

import (
	"context"
	"coursemaster/internal/catalog"
	"coursemaster/internal/model"
	"coursemaster/internal/repository"
	"coursemaster/internal/util"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseAdminService 管理后台：课程维护和统计，始终读写本服务数据库
type CourseAdminService struct {
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	assignments *repository.AssignmentRepository
	users       *repository.UserRepository
	catalog     *CatalogService
	storage     *StorageService
	log         *zap.Logger
}

func NewCourseAdminService(
	courses *repository.CourseRepository,
	enrollments *repository.EnrollmentRepository,
	assignments *repository.AssignmentRepository,
	users *repository.UserRepository,
	catalog *CatalogService,
	storage *StorageService,
	log *zap.Logger,
) *CourseAdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseAdminService{
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		users:       users,
		catalog:     catalog,
		storage:     storage,
		log:         log,
	}
}

// CourseInput 可编辑的课程字段
type CourseInput struct {
	Title            string            `json:"title" binding:"required,notblank"`
	Description      string            `json:"description"`
	Instructor       string            `json:"instructor" binding:"required"`
	InstructorAvatar string            `json:"instructorAvatar"`
	Category         string            `json:"category" binding:"required"`
	Level            model.CourseLevel `json:"level" binding:"required,course_level"`
	Price            float64           `json:"price" binding:"gte=0"`
	OriginalPrice    *float64          `json:"originalPrice" binding:"omitempty,gtefield=Price"`
	Duration         string            `json:"duration"`
	Rating           float64           `json:"rating" binding:"gte=0,lte=5"`
	Tags             []string          `json:"tags"`
	Syllabus         []model.Module    `json:"syllabus"`
}

func (in *CourseInput) apply(c *model.Course) {
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.Instructor = in.Instructor
	c.InstructorAvatar = in.InstructorAvatar
	c.Category = in.Category
	c.Level = in.Level
	c.Price = in.Price
	c.OriginalPrice = in.OriginalPrice
	c.Duration = in.Duration
	c.Rating = in.Rating
	c.Tags = in.Tags
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.Syllabus = in.Syllabus
	c.LessonsCount = len(c.AllLessons())
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", util.ErrValidation, err)
}

// List 后台课程表，支持与目录相同的搜索
func (s *CourseAdminService) List(ctx context.Context, search string) ([]model.Course, error) {
	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(courses, catalog.Params{Search: search}.Normalize()), nil
}

func (s *CourseAdminService) Create(ctx context.Context, in *CourseInput) (*model.Course, error) {
	course := &model.Course{}
	in.apply(course)
	if err := course.Validate(); err != nil {
		return nil, validationError(err)
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	s.log.Info("Course created", zap.String("course_id", course.ID), zap.String("title", course.Title))
	return course, nil
}

func (s *CourseAdminService) find(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

func (s *CourseAdminService) Update(ctx context.Context, id string, in *CourseInput) (*model.Course, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(course)
	if err := course.Validate(); err != nil {
		return nil, validationError(err)
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	s.catalog.Invalidate()
	return course, nil
}

func (s *CourseAdminService) Delete(ctx context.Context, id string) error {
	err := s.courses.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrCourseNotFound
	}
	if err != nil {
		return err
	}
	s.catalog.Invalidate()
	s.log.Info("Course deleted", zap.String("course_id", id))
	return nil
}

// UploadThumbnail 保存封面并更新课程；数据库更新失败时删除已上传的文件
func (s *CourseAdminService) UploadThumbnail(ctx context.Context, id, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if _, err := s.find(ctx, id); err != nil {
		return "", err
	}
	if !util.HasAllowedExtension(filename, util.AllowedImageExtensions) {
		return "", fmt.Errorf("%w: unsupported image extension", util.ErrValidation)
	}

	object := path.Join("thumbnails", id, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	url, err := s.storage.Upload(ctx, object, reader, size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.courses.UpdateThumbnail(ctx, id, url); err != nil {
		if derr := s.storage.Delete(ctx, object); derr != nil {
			s.log.Warn("Failed to remove orphan thumbnail", zap.String("object", object), zap.Error(derr))
		}
		return "", err
	}
	s.catalog.Invalidate()
	return url, nil
}

// AdminStats 管理后台统计
type AdminStats struct {
	TotalCourses     int64   `json:"totalCourses"`
	TotalStudents    int64   `json:"totalStudents"`
	TotalEnrollments int64   `json:"totalEnrollments"`
	ActiveBatches    int64   `json:"activeBatches"`
	Submissions      int64   `json:"submissions"`
	AverageProgress  float64 `json:"averageProgress"`
}

func (s *CourseAdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	var err error
	if stats.TotalCourses, err = s.courses.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.users.Count(ctx, model.Student); err != nil {
		return nil, err
	}
	if stats.TotalEnrollments, err = s.enrollments.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveBatches, err = s.enrollments.CountBatches(ctx); err != nil {
		return nil, err
	}
	if stats.Submissions, err = s.assignments.CountSubmissions(ctx); err != nil {
		return nil, err
	}
	if stats.AverageProgress, err = s.enrollments.AverageProgress(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}
