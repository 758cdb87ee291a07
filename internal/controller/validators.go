package controller

import (
	"coursemaster/internal/model"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 自定义校验标签
const (
	courseLevelTag = "course_level"
	notBlankTag    = "notblank"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的校验器上注册自定义标签，错误信息使用 json 字段名
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation(courseLevelTag, courseLevelValidation)
		_ = v.RegisterValidation(notBlankTag, notBlankValidation)
	})
}

func courseLevelValidation(fl validator.FieldLevel) bool {
	return model.CourseLevel(fl.Field().String()).Valid()
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
