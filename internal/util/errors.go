package util

import (
	"errors"
	"fmt"
)

// 错误类别，控制器按类别映射 HTTP 状态码
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrUpstream         = errors.New("upstream request failed")
	ErrNotImplemented   = errors.New("not implemented")
)

var (
	ErrUserNotFound       = fmt.Errorf("%w: 用户不存在", ErrNotFound)
	ErrEmailRegistered    = fmt.Errorf("%w: 该邮箱已被注册", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: 邮箱或密码错误", ErrUnauthorized)

	ErrCourseNotFound     = fmt.Errorf("%w: course", ErrNotFound)
	ErrLessonNotFound     = fmt.Errorf("%w: lesson", ErrNotFound)
	ErrQuizNotFound       = fmt.Errorf("%w: quiz", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("%w: assignment", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("%w: submission", ErrNotFound)
	ErrViewNotOpen        = fmt.Errorf("%w: learning view is not open", ErrNotFound)
	ErrAttemptNotFound    = fmt.Errorf("%w: quiz attempt", ErrNotFound)

	ErrNotEnrolled       = fmt.Errorf("%w: not enrolled in course", ErrPermissionDenied)
	ErrAlreadySubmitted  = fmt.Errorf("%w: assignment already submitted", ErrConflict)
	ErrInvalidSubmission = fmt.Errorf("%w: invalid submission", ErrValidation)
	ErrInvalidGrade      = fmt.Errorf("%w: grade must be between 0 and 100", ErrValidation)
)
