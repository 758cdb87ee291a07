// Package gateway 课程、选课、进度和测验数据的读写入口。
// Store 直接读写本服务数据库；REST 代理上游课程 API。
package gateway

import (
	"context"
	"coursemaster/internal/model"
)

type Gateway interface {
	FetchCourses(ctx context.Context) ([]model.Course, error)
	FetchCourse(ctx context.Context, courseID string) (*model.Course, error)
	FetchEnrollments(ctx context.Context, userID uint) ([]model.Enrollment, error)
	// Enroll 重复选课不是错误，返回已有记录
	Enroll(ctx context.Context, userID uint, courseID string) (*model.Enrollment, error)
	// PersistLessonCompletion 保存完整的已完成课时集合
	PersistLessonCompletion(ctx context.Context, userID uint, courseID string, completed []string) error
	FetchQuizzes(ctx context.Context, courseID string) ([]model.Quiz, error)
}

type tokenKey struct{}

// WithToken 记录调用方令牌，REST 网关转发给上游
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
