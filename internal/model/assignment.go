package model

import (
	"time"
)

type SubmissionType string

const (
	SubmissionLink SubmissionType = "link"
	SubmissionText SubmissionType = "text"
)

// swagger:model Assignment
type Assignment struct {
	UUIDBase
	CourseID    string `gorm:"size:36;index;not null" json:"courseId"`
	ModuleID    string `gorm:"size:36" json:"moduleId,omitempty"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// swagger:model AssignmentSubmission
type AssignmentSubmission struct {
	UUIDBase
	AssignmentID string         `gorm:"size:36;index:idx_assignment_user,unique;not null" json:"assignmentId"`
	UserID       uint           `gorm:"index:idx_assignment_user,unique;not null" json:"userId"`
	Type         SubmissionType `gorm:"size:10;not null" json:"type"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	SubmittedAt  time.Time      `json:"submittedAt"`
	Grade        *int           `json:"grade,omitempty"`
	Feedback     string         `gorm:"type:text" json:"feedback,omitempty"`
}

func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}
