package progress

import (
	"coursemaster/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeQuestionQuiz() model.Quiz {
	return model.Quiz{
		UUIDBase: model.UUIDBase{ID: "quiz-1"},
		CourseID: "course-1",
		Title:    "Basics",
		Questions: []model.Question{
			{ID: "q1", Text: "2+2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
			{ID: "q2", Text: "Go keyword?", Options: []string{"func", "def"}, CorrectAnswer: "func"},
			{ID: "q3", Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
		},
	}
}

func answerAll(t *testing.T, a *QuizAttempt, answers ...int) {
	t.Helper()
	for q, opt := range answers {
		require.NoError(t, a.SelectAnswer(q, opt))
	}
}

func TestQuizScoring(t *testing.T) {
	a := NewQuizAttempt(threeQuestionQuiz(), nil)
	answerAll(t, a, 1, 1, 0) // 对 错 对
	require.NoError(t, a.Submit())

	score, err := a.Score()
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	result, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 67, result.Percentage)
	assert.False(t, result.Passed)
	assert.True(t, result.Review[0].Correct)
	assert.False(t, result.Review[1].Correct)
	assert.Equal(t, "def", result.Review[1].SelectedAnswer)
	assert.Equal(t, "func", result.Review[1].CorrectAnswer)
}

func TestQuizAllCorrectPasses(t *testing.T) {
	a := NewQuizAttempt(threeQuestionQuiz(), nil)
	answerAll(t, a, 1, 0, 0)
	require.NoError(t, a.Submit())

	result, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 100, result.Percentage)
	assert.True(t, result.Passed)
}

func TestQuizMatchesByValue(t *testing.T) {
	quiz := threeQuestionQuiz()
	// 选项顺序调整后，正确答案仍按文本匹配
	quiz.Questions[0].Options = []string{"4", "3", "5"}
	a := NewQuizAttempt(quiz, nil)
	answerAll(t, a, 0, 0, 0)
	require.NoError(t, a.Submit())

	score, err := a.Score()
	require.NoError(t, err)
	assert.Equal(t, 3, score)
}

func TestQuizUnanswerableQuestionIsIncorrect(t *testing.T) {
	quiz := threeQuestionQuiz()
	quiz.Questions[2].CorrectAnswer = "Berlin"
	a := NewQuizAttempt(quiz, nil)
	answerAll(t, a, 1, 0, 0)
	require.NoError(t, a.Submit())

	score, err := a.Score()
	require.NoError(t, err)
	assert.Equal(t, 2, score)
}

func TestQuizSubmitRequiresAllAnswers(t *testing.T) {
	a := NewQuizAttempt(threeQuestionQuiz(), nil)
	answerAll(t, a, 1, 0)

	assert.ErrorIs(t, a.Submit(), ErrIncomplete)
	assert.False(t, a.Submitted())

	_, err := a.Score()
	assert.ErrorIs(t, err, ErrNotSubmitted)
	_, err = a.Result()
	assert.ErrorIs(t, err, ErrNotSubmitted)
}

func TestQuizLockedAfterSubmit(t *testing.T) {
	a := NewQuizAttempt(threeQuestionQuiz(), nil)
	answerAll(t, a, 1, 0, 0)
	require.NoError(t, a.Submit())

	require.NoError(t, a.SelectAnswer(0, 0))
	score, err := a.Score()
	require.NoError(t, err)
	assert.Equal(t, 3, score)

	// 重复提交无副作用
	require.NoError(t, a.Submit())
}

func TestQuizSelectAnswerValidation(t *testing.T) {
	a := NewQuizAttempt(threeQuestionQuiz(), nil)

	assert.ErrorIs(t, a.SelectAnswer(3, 0), ErrInvalidAnswer)
	assert.ErrorIs(t, a.SelectAnswer(-1, 0), ErrInvalidAnswer)
	assert.ErrorIs(t, a.SelectAnswer(0, 3), ErrInvalidAnswer)

	require.NoError(t, a.SelectAnswer(0, 2))
	require.NoError(t, a.SelectAnswer(0, 1))
	state := a.State()
	require.NotNil(t, state.Answers[0])
	assert.Equal(t, 1, *state.Answers[0])
	assert.Equal(t, 1, state.Answered)
	assert.Equal(t, 3, state.Total)
}

func TestQuizRetryResets(t *testing.T) {
	a := NewQuizAttempt(threeQuestionQuiz(), nil)
	answerAll(t, a, 1, 0, 0)
	require.NoError(t, a.Submit())

	a.Retry()

	state := a.State()
	assert.False(t, state.Submitted)
	assert.Equal(t, []*int{nil, nil, nil}, state.Answers)
	assert.Equal(t, 0, state.Answered)
	assert.ErrorIs(t, a.Submit(), ErrIncomplete)
}

func TestEmptyQuiz(t *testing.T) {
	a := NewQuizAttempt(model.Quiz{UUIDBase: model.UUIDBase{ID: "empty"}}, nil)
	require.NoError(t, a.Submit())

	result, err := a.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, result.Percentage)
	assert.False(t, result.Passed)
}
