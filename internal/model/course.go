package model

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidCourse = errors.New("invalid course")

type CourseLevel string

const (
	Beginner     CourseLevel = "Beginner"
	Intermediate CourseLevel = "Intermediate"
	Advanced     CourseLevel = "Advanced"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Course 课程，课程大纲(Syllabus)按展示顺序保存
// swagger:model Course
type Course struct {
	UUIDBase
	Title            string      `gorm:"size:255;not null;index" json:"title"`
	Description      string      `gorm:"type:text" json:"description"`
	Instructor       string      `gorm:"size:100;not null" json:"instructor"`
	InstructorAvatar string      `gorm:"size:255" json:"instructorAvatar,omitempty"`
	Category         string      `gorm:"size:100;index" json:"category"`
	Level            CourseLevel `gorm:"size:20;index" json:"level"`
	Price            float64     `gorm:"not null;default:0" json:"price"`
	OriginalPrice    *float64    `json:"originalPrice,omitempty"`
	Thumbnail        string      `gorm:"size:255" json:"thumbnail"`
	Duration         string      `gorm:"size:50" json:"duration"`
	Rating           float64     `gorm:"default:0" json:"rating"`
	EnrolledCount    int         `gorm:"default:0" json:"enrolledCount"`
	ReviewsCount     int         `gorm:"default:0" json:"reviewsCount"`
	LessonsCount     int         `gorm:"default:0" json:"lessonsCount"`
	Tags             []string    `gorm:"serializer:json;type:json" json:"tags"`
	Syllabus         []Module    `gorm:"serializer:json;type:json" json:"syllabus"`
}

func (Course) TableName() string {
	return "courses"
}

// Module 课程模块，可选关联一个测验和一个作业
type Module struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Lessons      []Lesson `json:"lessons"`
	QuizID       string   `json:"quizId,omitempty"`
	AssignmentID string   `json:"assignmentId,omitempty"`
}

type Lesson struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	VideoURL  string `json:"videoUrl"`
	IsPreview bool   `json:"isPreview,omitempty"`
}

// DiscountPercent 根据原价计算折扣百分比，不落库
func (c *Course) DiscountPercent() int {
	if c.OriginalPrice == nil || *c.OriginalPrice <= 0 {
		return 0
	}
	orig := *c.OriginalPrice
	return int(math.Round((orig - c.Price) / orig * 100))
}

// AllLessons 按文档顺序展开所有课时
func (c *Course) AllLessons() []Lesson {
	var lessons []Lesson
	for _, m := range c.Syllabus {
		lessons = append(lessons, m.Lessons...)
	}
	return lessons
}

// LessonIndex 返回课时在文档顺序中的位置，不存在返回 -1
func (c *Course) LessonIndex(lessonID string) int {
	i := 0
	for _, m := range c.Syllabus {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return i
			}
			i++
		}
	}
	return -1
}

func (c *Course) HasLesson(lessonID string) bool {
	return c.LessonIndex(lessonID) >= 0
}

// PreviewOnly 课程所有课时均可免费试看
func (c *Course) PreviewOnly() bool {
	lessons := c.AllLessons()
	if len(lessons) == 0 {
		return false
	}
	for _, l := range lessons {
		if !l.IsPreview {
			return false
		}
	}
	return true
}

func (c *Course) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidCourse)
	}
	if c.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidCourse)
	}
	if c.OriginalPrice != nil && *c.OriginalPrice < c.Price {
		return fmt.Errorf("%w: original price must not be below price", ErrInvalidCourse)
	}
	if c.Rating < 0 || c.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidCourse)
	}
	if c.Level != "" && !c.Level.Valid() {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidCourse, c.Level)
	}
	seen := make(map[string]bool)
	for _, l := range c.AllLessons() {
		if l.ID == "" {
			return fmt.Errorf("%w: lesson without id", ErrInvalidCourse)
		}
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate lesson id %q", ErrInvalidCourse, l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}
