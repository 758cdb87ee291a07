package model

import (
	"errors"
	"fmt"
)

var ErrInvalidQuiz = errors.New("invalid quiz")

// Quiz 测验；题目正确答案按选项文本比较而非下标
// swagger:model Quiz
type Quiz struct {
	UUIDBase
	CourseID  string     `gorm:"size:36;index;not null" json:"courseId"`
	ModuleID  string     `gorm:"size:36" json:"moduleId,omitempty"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Questions []Question `gorm:"serializer:json;type:json" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

// Answerable 正确答案必须是选项之一
func (q Question) Answerable() bool {
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// IsCorrect 按选项文本判断所选下标是否正确
func (q Question) IsCorrect(option int) bool {
	if option < 0 || option >= len(q.Options) {
		return false
	}
	return q.Options[option] == q.CorrectAnswer
}

func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %q needs at least two options", ErrInvalidQuiz, q.ID)
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o] {
			return fmt.Errorf("%w: question %q has duplicate option %q", ErrInvalidQuiz, q.ID, o)
		}
		seen[o] = true
	}
	if !q.Answerable() {
		return fmt.Errorf("%w: question %q correct answer is not among its options", ErrInvalidQuiz, q.ID)
	}
	return nil
}

func (q *Quiz) Validate() error {
	if q.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if q.CourseID == "" {
		return fmt.Errorf("%w: course is required", ErrInvalidQuiz)
	}
	ids := make(map[string]bool, len(q.Questions))
	for _, question := range q.Questions {
		if question.ID == "" || ids[question.ID] {
			return fmt.Errorf("%w: question ids must be unique and non-empty", ErrInvalidQuiz)
		}
		ids[question.ID] = true
		if err := question.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Public 返回去掉正确答案的副本，供学生作答
func (q Quiz) Public() Quiz {
	questions := make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		questions[i] = question
	}
	q.Questions = questions
	return q
}
