package gateway

import (
	"context"
	"coursemaster/internal/util"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *REST {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewREST(srv.URL, 2*time.Second, nil)
}

func TestRESTFetchCoursesAcceptsMongoIDs(t *testing.T) {
	var auth string
	g := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/courses", r.URL.Path)
		writeJSON(w, http.StatusOK, `[
			{"_id":"a1","title":"Go","instructor":"Ada","syllabus":[{"id":"m","lessons":[{"id":"l1"},{"id":"l2"}]}]},
			{"id":"b2","title":"Rust","instructor":"Bo"}
		]`)
	})

	ctx := WithToken(context.Background(), "tok")
	courses, err := g.FetchCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "a1", courses[0].ID)
	assert.Equal(t, 2, courses[0].LessonsCount)
	assert.Equal(t, "b2", courses[1].ID)
	assert.Equal(t, "Bearer tok", auth)
}

func TestRESTFetchCourseNotFound(t *testing.T) {
	g := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"no such course"}`)
	})

	_, err := g.FetchCourse(context.Background(), "missing")
	assert.True(t, errors.Is(err, util.ErrCourseNotFound))
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestRESTFetchEnrollmentsBothShapes(t *testing.T) {
	for name, body := range map[string]string{
		"wrapped": `{"courses":[{"_id":"e1","courseId":"c1","completedLessons":["l1"]}]}`,
		"bare":    `[{"_id":"e1","courseId":"c1","completedLessons":["l1"]}]`,
	} {
		t.Run(name, func(t *testing.T) {
			g := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/enroll", r.URL.Path)
				writeJSON(w, http.StatusOK, body)
			})
			list, err := g.FetchEnrollments(context.Background(), 1)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "e1", list[0].ID)
			assert.Equal(t, "c1", list[0].CourseID)
			assert.Equal(t, []string{"l1"}, list[0].CompletedLessons)
		})
	}
}

func TestRESTPersistLessonCompletion(t *testing.T) {
	var got struct {
		CompletedLessons []string `json:"completedLessons"`
	}
	g := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/enroll/c1/progress", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{}`)
	})

	require.NoError(t, g.PersistLessonCompletion(context.Background(), 1, "c1", []string{"l1", "l2"}))
	assert.Equal(t, []string{"l1", "l2"}, got.CompletedLessons)
}

func TestRESTServerErrorIsUpstream(t *testing.T) {
	g := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"message":"boom"}`)
	})

	err := g.PersistLessonCompletion(context.Background(), 1, "c1", nil)
	assert.True(t, errors.Is(err, util.ErrUpstream))
}

func TestRESTUnreachable(t *testing.T) {
	g := NewREST("http://127.0.0.1:1", 200*time.Millisecond, nil)
	_, err := g.FetchCourses(context.Background())
	assert.True(t, errors.Is(err, util.ErrUpstream))
}

func TestRESTFetchQuizzesEnvelope(t *testing.T) {
	g := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quiz/c1", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data":[{"_id":"q1","title":"Check","questions":[{"id":"x","text":"?","options":["a","b"],"correctAnswer":"b"}]}]}`)
	})

	quizzes, err := g.FetchQuizzes(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "q1", quizzes[0].ID)
	assert.Equal(t, "c1", quizzes[0].CourseID)
	assert.Equal(t, "b", quizzes[0].Questions[0].CorrectAnswer)
}

func TestRESTEnrollConflictIsNotAnError(t *testing.T) {
	g := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enroll/c1", r.URL.Path)
		writeJSON(w, http.StatusConflict, `{"message":"already enrolled"}`)
	})

	e, err := g.Enroll(context.Background(), 3, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", e.CourseID)
	assert.Equal(t, uint(3), e.UserID)
}
