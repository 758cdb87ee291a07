package util

import (
	"coursemaster/internal/model"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "ann@example.com", Role: model.Admin}
	user.ID = 42

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Admin, claims.Role)
	assert.Equal(t, "42", claims.Subject)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(&model.User{}, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestErrorCategories(t *testing.T) {
	assert.True(t, errors.Is(ErrCourseNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrNotEnrolled, ErrPermissionDenied))
	assert.True(t, errors.Is(ErrInvalidGrade, ErrValidation))
	assert.False(t, errors.Is(ErrAlreadySubmitted, ErrNotFound))
}

func TestHasAllowedExtension(t *testing.T) {
	assert.True(t, HasAllowedExtension("cover.PNG", AllowedImageExtensions))
	assert.False(t, HasAllowedExtension("cover.exe", AllowedImageExtensions))
}
