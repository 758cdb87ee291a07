package gateway

import (
	"context"
	"coursemaster/internal/model"
	"coursemaster/internal/util"
	"coursemaster/pkg/tracing"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// REST 代理上游课程 API 的网关，调用方令牌通过 Authorization 头转发
type REST struct {
	client *resty.Client
	log    *zap.Logger
}

func NewREST(baseURL string, timeout time.Duration, log *zap.Logger) *REST {
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &REST{client: client, log: log}
}

// 上游文档的主键字段是 _id
type remoteCourse struct {
	model.Course
	MongoID string `json:"_id"`
}

func (c remoteCourse) normalize() model.Course {
	course := c.Course
	if course.ID == "" {
		course.ID = c.MongoID
	}
	if course.LessonsCount == 0 {
		course.LessonsCount = len(course.AllLessons())
	}
	return course
}

type remoteEnrollment struct {
	model.Enrollment
	MongoID string `json:"_id"`
}

func (e remoteEnrollment) normalize() model.Enrollment {
	enrollment := e.Enrollment
	if enrollment.ID == "" {
		enrollment.ID = e.MongoID
	}
	if enrollment.CompletedLessons == nil {
		enrollment.CompletedLessons = []string{}
	}
	return enrollment
}

type remoteQuiz struct {
	model.Quiz
	MongoID string `json:"_id"`
}

func (q remoteQuiz) normalize() model.Quiz {
	quiz := q.Quiz
	if quiz.ID == "" {
		quiz.ID = q.MongoID
	}
	return quiz
}

func (g *REST) request(ctx context.Context) *resty.Request {
	req := g.client.R().SetContext(ctx)
	if token, ok := TokenFromContext(ctx); ok {
		req.SetAuthToken(token)
	}
	return req
}

// check 把上游错误统一成 util 中的错误类别
func (g *REST) check(resp *resty.Response, err error, notFound error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrUpstream, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return notFound
	case resp.StatusCode() == http.StatusUnauthorized:
		return util.ErrUnauthorized
	case resp.StatusCode() == http.StatusForbidden:
		return util.ErrPermissionDenied
	case resp.IsError():
		g.log.Warn("Upstream request failed",
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
		)
		return fmt.Errorf("%w: %s %s returned %d", util.ErrUpstream, resp.Request.Method, resp.Request.URL, resp.StatusCode())
	}
	return nil
}

func (g *REST) FetchCourses(ctx context.Context) (courses []model.Course, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.rest.FetchCourses")
	defer func() { tracing.End(span, err) }()

	var body []remoteCourse
	resp, err := g.request(ctx).SetResult(&body).Get("/courses")
	if err = g.check(resp, err, util.ErrNotFound); err != nil {
		return nil, err
	}
	courses = make([]model.Course, 0, len(body))
	for _, c := range body {
		courses = append(courses, c.normalize())
	}
	return courses, nil
}

func (g *REST) FetchCourse(ctx context.Context, courseID string) (course *model.Course, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.rest.FetchCourse", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	var body remoteCourse
	resp, err := g.request(ctx).
		SetPathParam("id", courseID).
		SetResult(&body).
		Get("/courses/{id}")
	if err = g.check(resp, err, util.ErrCourseNotFound); err != nil {
		return nil, err
	}
	c := body.normalize()
	return &c, nil
}

// FetchEnrollments 上游可能返回 {courses: [...]} 或裸数组
func (g *REST) FetchEnrollments(ctx context.Context, userID uint) (enrollments []model.Enrollment, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.rest.FetchEnrollments", attribute.Int64("user.id", int64(userID)))
	defer func() { tracing.End(span, err) }()

	resp, err := g.request(ctx).Get("/enroll")
	if err = g.check(resp, err, util.ErrNotFound); err != nil {
		return nil, err
	}

	var list []remoteEnrollment
	if err = decodeEnrollments(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("%w: decode enrollments: %v", util.ErrUpstream, err)
	}
	enrollments = make([]model.Enrollment, 0, len(list))
	for _, e := range list {
		enrollments = append(enrollments, e.normalize())
	}
	return enrollments, nil
}

func decodeEnrollments(body []byte, out *[]remoteEnrollment) error {
	var wrapped struct {
		Courses []remoteEnrollment `json:"courses"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Courses != nil {
		*out = wrapped.Courses
		return nil
	}
	return json.Unmarshal(body, out)
}

func (g *REST) Enroll(ctx context.Context, userID uint, courseID string) (enrollment *model.Enrollment, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.rest.Enroll", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	var body struct {
		Data *remoteEnrollment `json:"data"`
	}
	resp, err := g.request(ctx).
		SetPathParam("courseId", courseID).
		SetBody(map[string]interface{}{}).
		SetResult(&body).
		Post("/enroll/{courseId}")
	if resp != nil && resp.StatusCode() == http.StatusConflict {
		err = nil
	} else if err = g.check(resp, err, util.ErrCourseNotFound); err != nil {
		return nil, err
	}

	if body.Data != nil {
		e := body.Data.normalize()
		return &e, nil
	}
	return &model.Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
		EnrolledAt:       time.Now(),
	}, nil
}

func (g *REST) PersistLessonCompletion(ctx context.Context, userID uint, courseID string, completed []string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.rest.PersistLessonCompletion",
		attribute.String("course.id", courseID),
		attribute.Int("lessons.completed", len(completed)),
	)
	defer func() { tracing.End(span, err) }()

	resp, err := g.request(ctx).
		SetPathParam("courseId", courseID).
		SetBody(map[string]interface{}{"completedLessons": completed}).
		Put("/enroll/{courseId}/progress")
	return g.check(resp, err, util.ErrNotEnrolled)
}

// FetchQuizzes 上游返回 {data: [...]}
func (g *REST) FetchQuizzes(ctx context.Context, courseID string) (quizzes []model.Quiz, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.rest.FetchQuizzes", attribute.String("course.id", courseID))
	defer func() { tracing.End(span, err) }()

	var body struct {
		Data []remoteQuiz `json:"data"`
	}
	resp, err := g.request(ctx).
		SetPathParam("courseId", courseID).
		SetResult(&body).
		Get("/quiz/{courseId}")
	if err = g.check(resp, err, util.ErrCourseNotFound); err != nil {
		return nil, err
	}
	quizzes = make([]model.Quiz, 0, len(body.Data))
	for _, q := range body.Data {
		quiz := q.normalize()
		if quiz.CourseID == "" {
			quiz.CourseID = courseID
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}
