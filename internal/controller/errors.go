package controller

import (
	"coursemaster/internal/model"
	"coursemaster/internal/progress"
	"coursemaster/internal/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError 按错误类别映射 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	var persistErr *progress.PersistError
	switch {
	case errors.As(err, &persistErr):
		util.ErrorWithData(ctx, http.StatusBadGateway, err.Error(),
			util.RetryInfo{Retryable: true, LessonID: persistErr.LessonID})
	case errors.Is(err, progress.ErrClosed):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrNotFound), errors.Is(err, progress.ErrLessonNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrValidation),
		errors.Is(err, progress.ErrIncomplete),
		errors.Is(err, progress.ErrInvalidAnswer),
		errors.Is(err, progress.ErrNotSubmitted),
		errors.Is(err, model.ErrInvalidCourse),
		errors.Is(err, model.ErrInvalidQuiz):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrUnauthorized):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrConflict):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrUpstream):
		util.Error(ctx, http.StatusBadGateway, err.Error())
	case errors.Is(err, util.ErrNotImplemented):
		util.Error(ctx, http.StatusNotImplemented, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentUser 取出登录用户，未登录时直接写 401
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return user, true
}

func queryInt(ctx *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return def
	}
	return v
}
