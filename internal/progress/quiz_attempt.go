package progress

import (
	"coursemaster/internal/model"
	"sync"

	"go.uber.org/zap"
)

// PassThreshold 及格线（百分比）
const PassThreshold = 70

// QuizAttempt 单次测验作答：Answering -> Submitted -> (Retry) Answering
type QuizAttempt struct {
	mu        sync.Mutex
	quiz      model.Quiz
	selected  []*int
	submitted bool
}

type AttemptState struct {
	QuizID    string `json:"quizId"`
	Answers   []*int `json:"answers"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
	Submitted bool   `json:"submitted"`
}

type QuestionReview struct {
	QuestionID     string `json:"questionId"`
	Question       string `json:"question"`
	Selected       *int   `json:"selected"`
	SelectedAnswer string `json:"selectedAnswer,omitempty"`
	CorrectAnswer  string `json:"correctAnswer"`
	Correct        bool   `json:"correct"`
}

type QuizResult struct {
	QuizID     string           `json:"quizId"`
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Passed     bool             `json:"passed"`
	Review     []QuestionReview `json:"review"`
}

func NewQuizAttempt(quiz model.Quiz, log *zap.Logger) *QuizAttempt {
	if log == nil {
		log = zap.NewNop()
	}
	for _, q := range quiz.Questions {
		if !q.Answerable() {
			log.Warn("question correct answer not among options, scored as incorrect",
				zap.String("quiz_id", quiz.ID), zap.String("question_id", q.ID))
		}
	}
	return &QuizAttempt{
		quiz:     quiz,
		selected: make([]*int, len(quiz.Questions)),
	}
}

func (a *QuizAttempt) Quiz() model.Quiz {
	return a.quiz
}

// SelectAnswer 选择/覆盖某题答案；已提交时静默忽略
func (a *QuizAttempt) SelectAnswer(question, option int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return nil
	}
	if question < 0 || question >= len(a.quiz.Questions) {
		return ErrInvalidAnswer
	}
	if option < 0 || option >= len(a.quiz.Questions[question].Options) {
		return ErrInvalidAnswer
	}
	a.selected[question] = &option
	return nil
}

// Submit 所有题目都作答后才能提交，提交后锁定
func (a *QuizAttempt) Submit() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return nil
	}
	for _, s := range a.selected {
		if s == nil {
			return ErrIncomplete
		}
	}
	a.submitted = true
	return nil
}

func (a *QuizAttempt) Submitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitted
}

// Score 按选项文本与正确答案比较计分
func (a *QuizAttempt) Score() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.submitted {
		return 0, ErrNotSubmitted
	}
	return a.scoreLocked(), nil
}

func (a *QuizAttempt) scoreLocked() int {
	score := 0
	for i, q := range a.quiz.Questions {
		if s := a.selected[i]; s != nil && q.IsCorrect(*s) {
			score++
		}
	}
	return score
}

func (a *QuizAttempt) Result() (*QuizResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.submitted {
		return nil, ErrNotSubmitted
	}

	score := a.scoreLocked()
	total := len(a.quiz.Questions)
	percentage := model.Percent(score, total)
	result := &QuizResult{
		QuizID:     a.quiz.ID,
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Passed:     percentage >= PassThreshold,
		Review:     make([]QuestionReview, total),
	}
	for i, q := range a.quiz.Questions {
		review := QuestionReview{
			QuestionID:    q.ID,
			Question:      q.Text,
			CorrectAnswer: q.CorrectAnswer,
		}
		if s := a.selected[i]; s != nil {
			selected := *s
			review.Selected = &selected
			review.SelectedAnswer = q.Options[selected]
			review.Correct = q.IsCorrect(selected)
		}
		result.Review[i] = review
	}
	return result, nil
}

// Retry 重新开始，与上次得分无关
func (a *QuizAttempt) Retry() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.selected = make([]*int, len(a.quiz.Questions))
	a.submitted = false
}

func (a *QuizAttempt) State() AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := AttemptState{
		QuizID:    a.quiz.ID,
		Answers:   make([]*int, len(a.selected)),
		Total:     len(a.selected),
		Submitted: a.submitted,
	}
	for i, s := range a.selected {
		if s != nil {
			v := *s
			state.Answers[i] = &v
			state.Answered++
		}
	}
	return state
}
