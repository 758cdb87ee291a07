package database

import (
	"coursemaster/internal/model"

	"gorm.io/gorm"
)

func price(v float64) *float64 { return &v }

// 默认示例课程
func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		courses := []model.Course{
			{
				Title:         "Go From Zero",
				Description:   "Types, interfaces, goroutines and the standard library.",
				Instructor:    "Ada Park",
				Category:      "Programming",
				Level:         model.Beginner,
				Price:         49.99,
				OriginalPrice: price(89.99),
				Duration:      "6h 30m",
				Rating:        4.7,
				Tags:          []string{"go", "backend"},
				Syllabus: []model.Module{
					{
						ID:    "go-m1",
						Title: "Getting Started",
						Lessons: []model.Lesson{
							{ID: "go-l1", Title: "Installing Go", Duration: "8:00", IsPreview: true},
							{ID: "go-l2", Title: "Hello, World", Duration: "12:00"},
						},
					},
					{
						ID:    "go-m2",
						Title: "Concurrency",
						Lessons: []model.Lesson{
							{ID: "go-l3", Title: "Goroutines", Duration: "15:00"},
							{ID: "go-l4", Title: "Channels", Duration: "18:00"},
						},
					},
				},
			},
			{
				Title:       "Design Systems in Practice",
				Description: "Tokens, components and documentation for product teams.",
				Instructor:  "Mina Osei",
				Category:    "Design",
				Level:       model.Intermediate,
				Price:       0,
				Duration:    "3h",
				Rating:      4.4,
				Tags:        []string{"design", "ui"},
				Syllabus: []model.Module{
					{
						ID:    "ds-m1",
						Title: "Foundations",
						Lessons: []model.Lesson{
							{ID: "ds-l1", Title: "Why tokens", Duration: "10:00", IsPreview: true},
							{ID: "ds-l2", Title: "Color scales", Duration: "14:00", IsPreview: true},
						},
					},
				},
			},
		}
		for i := range courses {
			courses[i].LessonsCount = len(courses[i].AllLessons())
			if err := tx.Create(&courses[i]).Error; err != nil {
				return err
			}
		}

		quiz := model.Quiz{
			CourseID: courses[0].ID,
			ModuleID: "go-m1",
			Title:    "Getting Started Check",
			Questions: []model.Question{
				{ID: "q1", Text: "Which command runs a Go program?", Options: []string{"go run", "go fmt", "go vet"}, CorrectAnswer: "go run"},
				{ID: "q2", Text: "Which keyword starts a goroutine?", Options: []string{"async", "go", "spawn"}, CorrectAnswer: "go"},
			},
		}
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}

		assignment := model.Assignment{
			CourseID:    courses[0].ID,
			ModuleID:    "go-m2",
			Title:       "Build a worker pool",
			Description: "Share a repository link or paste your solution.",
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		courses[0].Syllabus[0].QuizID = quiz.ID
		courses[0].Syllabus[1].AssignmentID = assignment.ID
		return tx.Save(&courses[0]).Error
	})
}
