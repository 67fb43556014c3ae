package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", Validation("name is required"), KindValidation},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("product")), KindNotFound},
		{"conflict", Conflict("slug"), KindConflict},
		{"deadline", context.DeadlineExceeded, KindBackend},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindBackend},
		{"backend", Backend(errors.New("dial tcp: refused")), KindBackend},
		{"partial", PartialOrder("o-1", errors.New("boom")), KindPartialOrder},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestConflictMessage(t *testing.T) {
	err := Conflict("email")
	assert.Equal(t, "duplicate", err.Error())
	assert.Contains(t, errors.Unwrap(err).Error(), "email")
}

func TestBackendKeepsClassifiedErrors(t *testing.T) {
	nf := NotFound("order")
	assert.Same(t, nf, Backend(nf))
	assert.Nil(t, Backend(nil))
	assert.True(t, Retryable(Backend(errors.New("reset by peer"))))
	assert.False(t, Retryable(Validation("bad")))
}
