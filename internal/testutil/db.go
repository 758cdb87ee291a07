// Package testutil 测试用的内存数据库和示例数据
package testutil

import (
	"coursemaster/internal/model"
	"coursemaster/pkg/database"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试独立的 sqlite 内存库，已建表
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Course 四个课时分两个模块的课程
func Course(id string) model.Course {
	return model.Course{
		UUIDBase:   model.UUIDBase{ID: id},
		Title:      "Course " + id,
		Instructor: "Ada",
		Category:   "Programming",
		Level:      model.Beginner,
		Price:      10,
		Syllabus: []model.Module{
			{ID: id + "-m1", Title: "One", Lessons: []model.Lesson{{ID: id + "-l1"}, {ID: id + "-l2"}}},
			{ID: id + "-m2", Title: "Two", Lessons: []model.Lesson{{ID: id + "-l3"}, {ID: id + "-l4"}}},
		},
		LessonsCount: 4,
	}
}

// Quiz 三道题，正确答案依次为第 0、1、2 个选项
func Quiz(id, courseID string) model.Quiz {
	return model.Quiz{
		UUIDBase: model.UUIDBase{ID: id},
		CourseID: courseID,
		Title:    "Quiz " + id,
		Questions: []model.Question{
			{ID: "q1", Text: "2+2", Options: []string{"4", "5"}, CorrectAnswer: "4"},
			{ID: "q2", Text: "Go keyword", Options: []string{"async", "go"}, CorrectAnswer: "go"},
			{ID: "q3", Text: "Capital of France", Options: []string{"Rome", "Berlin", "Paris"}, CorrectAnswer: "Paris"},
		},
	}
}
