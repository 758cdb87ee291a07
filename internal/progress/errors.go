package progress

import (
	"errors"
	"fmt"
)

var (
	ErrClosed           = errors.New("view closed, result discarded")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrAlreadyCompleted = errors.New("lesson already completed")
	ErrIncomplete       = errors.New("all questions must be answered before submitting")
	ErrNotSubmitted     = errors.New("quiz not submitted")
	ErrInvalidAnswer    = errors.New("answer out of range")

	errSkipped = errors.New("command not applied")
)

// PersistError 课时完成状态保存失败，乐观更新已回滚，可以重试
type PersistError struct {
	LessonID string
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist completion of lesson %s: %v", e.LessonID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
