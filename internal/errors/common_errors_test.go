package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{name: "without cause", err: NewAppValidationError("unknown level"), want: "[VALIDATION] unknown level"},
		{name: "with cause", err: NewDataError("read survey", io.ErrUnexpectedEOF), want: "[DATA] read survey: unexpected EOF"},
		{name: "not found", err: NewNotFoundError("panel"), want: "[NOT_FOUND] panel not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewGeometryError("fetch district boundaries", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(error(err), &appErr))
	assert.Equal(t, ErrTypeGeometry, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewRenderError("draw histogram", nil).
		WithContext("chart", "age-histogram").
		WithContext("bins", 20)

	assert.Equal(t, "age-histogram", err.Context["chart"])
	assert.Equal(t, 20, err.Context["bins"])
}

func TestConstructorsSetType(t *testing.T) {
	assert.Equal(t, ErrTypeData, NewDataError("x", nil).Type)
	assert.Equal(t, ErrTypeGeometry, NewGeometryError("x", nil).Type)
	assert.Equal(t, ErrTypeRender, NewRenderError("x", nil).Type)
	assert.Equal(t, ErrTypeConfig, NewConfigError("x", nil).Type)
}
