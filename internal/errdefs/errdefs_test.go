package errdefs_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ringerc/flux-tenant-ctl/internal/errdefs"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: errdefs.ExitOK,
		},
		{
			name: "unclassified error",
			err:  errors.New("boom"),
			want: errdefs.ExitGeneric,
		},
		{
			name: "invalid argument",
			err:  errdefs.ErrInvalidArgument,
			want: errdefs.ExitInvalidArgument,
		},
		{
			name: "validation",
			err:  errdefs.ErrValidation,
			want: errdefs.ExitValidation,
		},
		{
			name: "already exists",
			err:  errdefs.ErrAlreadyExists,
			want: errdefs.ExitAlreadyExists,
		},
		{
			name: "not found",
			err:  errdefs.ErrNotFound,
			want: errdefs.ExitNotFound,
		},
		{
			name: "apply",
			err:  errdefs.ErrApply,
			want: errdefs.ExitApply,
		},
		{
			name: "timeout",
			err:  errdefs.ErrTimeout,
			want: errdefs.ExitTimeout,
		},
		{
			name: "marked and wrapped error keeps its class",
			err: errors.Wrap(
				errors.Mark(errors.New("namespace \"foo\" already exists"), errdefs.ErrAlreadyExists),
				"create namespace",
			),
			want: errdefs.ExitAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, errdefs.ExitCode(tt.err))
		})
	}
}
