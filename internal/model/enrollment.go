package model

import (
	"time"
)

// Enrollment 用户选课记录；Progress 由 CompletedLessons 推导，只能通过 SetCompletedLessons 修改
// swagger:model Enrollment
type Enrollment struct {
	UUIDBase
	UserID           uint      `gorm:"index:idx_user_course,unique;not null" json:"userId"`
	CourseID         string    `gorm:"size:36;index:idx_user_course,unique;not null" json:"courseId"`
	CompletedLessons []string  `gorm:"serializer:json;type:json" json:"completedLessons"`
	Progress         int       `gorm:"default:0" json:"progress"`
	EnrolledAt       time.Time `json:"enrolledAt"`
	BatchID          string    `gorm:"size:36" json:"batchId,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// SetCompletedLessons 以课程课时为准过滤、去重并按文档顺序保存已完成课时，同时重算进度。
// 返回被丢弃的未知课时ID。
func (e *Enrollment) SetCompletedLessons(course *Course, ids []string) (dropped []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if course.HasLesson(id) {
			want[id] = true
		} else {
			dropped = append(dropped, id)
		}
	}

	lessons := course.AllLessons()
	completed := make([]string, 0, len(want))
	for _, l := range lessons {
		if want[l.ID] {
			completed = append(completed, l.ID)
		}
	}

	e.CompletedLessons = completed
	e.Progress = Percent(len(completed), len(lessons))
	return dropped
}
