package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("do: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "url error", err: &url.Error{Op: "Get", URL: "http://x", Err: goerrors.New("refused")}, want: "network"},
		{name: "plain error", err: goerrors.New("boom"), want: "errors_errorstring"},
		{name: "wrapped plain error", err: fmt.Errorf("outer: %w", goerrors.New("boom")), want: "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
