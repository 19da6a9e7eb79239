package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserErrorError(t *testing.T) {
	err := MissingTemplatePlaceholder("footer").
		WithEmail("welcome", "en").
		WithFile("templates/basic.html")

	msg := err.Error()
	assert.Contains(t, msg, "[ERR_MISSING_TEMPLATE_PLACEHOLDER]")
	assert.Contains(t, msg, "email:welcome/en")
	assert.Contains(t, msg, "templates/basic.html")
	assert.Contains(t, msg, `"footer"`)
	assert.Equal(t, "footer", err.Context["placeholder"])
}

func TestParserErrorIsMatchesSentinels(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{"missing subject", MissingSubject(), ErrMissingSubject, true},
		{"missing placeholder", MissingTemplatePlaceholder("x"), ErrMissingTemplatePlaceholder, true},
		{"wrapped", fmt.Errorf("render: %w", MissingSubject()), ErrMissingSubject, true},
		{"different code", MissingSubject(), ErrMissingTemplatePlaceholder, false},
		{"plain error", errors.New("boom"), ErrMissingSubject, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errors.Is(tc.err, tc.sentinel))
		})
	}
}

func TestWrapPreservesIdentity(t *testing.T) {
	inner := MissingSubject().WithEmail("welcome", "fr")
	wrapped := Wrap(inner, ErrorTypeRender, ErrCodeInvalidDocument, "cannot render")

	require.NotNil(t, wrapped)
	assert.Equal(t, "welcome", wrapped.Email)
	assert.Equal(t, "fr", wrapped.Locale)
	assert.True(t, errors.Is(wrapped, ErrMissingSubject))
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "x", "y"))
}

func TestWrapIO(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")
	err := WrapIO(statErr, "read template", "/definitely/not/here")

	assert.Equal(t, ErrCodeFileNotFound, err.Code)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(MissingSubject()))
	assert.False(t, IsRecoverable(NewConfigError(ErrCodeConfigInvalid, "bad")))
	assert.False(t, IsRecoverable(errors.New("plain")))
	assert.True(t, IsRenderError(MissingSubject()))
}

func TestNewErrorCollector(t *testing.T) {
	collector := NewErrorCollector()

	assert.NotNil(t, collector)
	assert.Empty(t, collector.GetFailures())
	assert.False(t, collector.HasErrors())
}

func TestErrorCollectorSortsFailures(t *testing.T) {
	collector := NewErrorCollector()
	collector.Add(RenderFailure{Email: "b", Locale: "fr", Target: "html", Err: MissingSubject()})
	collector.Add(RenderFailure{Email: "a", Locale: "fr", Target: "subject", Err: MissingSubject()})
	collector.Add(RenderFailure{Email: "z", Locale: "en", Target: "text", Err: MissingSubject()})
	collector.AddError(errors.New("general"))
	collector.AddError(nil)

	failures := collector.GetFailures()
	require.Len(t, failures, 3)
	assert.Equal(t, "z", failures[0].Email)
	assert.Equal(t, "a", failures[1].Email)
	assert.Equal(t, "b", failures[2].Email)
	assert.False(t, failures[0].Timestamp.IsZero())

	all := collector.GetAllErrors()
	assert.Len(t, all, 4)
	assert.Equal(t, 4, collector.Count())
	assert.True(t, errors.Is(all[0], ErrMissingSubject))

	assert.Len(t, collector.GetFailuresByEmail("a"), 1)

	collector.Clear()
	assert.False(t, collector.HasErrors())
}

func TestErrorCollectorConcurrentAdd(t *testing.T) {
	collector := NewErrorCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			collector.Add(RenderFailure{Email: fmt.Sprintf("e%d", i), Locale: "en", Target: "html"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, collector.GetFailures(), 50)
}

func TestRenderFailureError(t *testing.T) {
	failure := &RenderFailure{Email: "welcome", Locale: "ar", Target: "html", Err: MissingSubject()}

	assert.Contains(t, failure.Error(), "ar/welcome [html]")
	assert.True(t, errors.Is(failure, ErrMissingSubject))
}

type recordingLogger struct {
	warns, errs []string
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.errs = append(r.errs, msg)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.warns = append(r.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)
	ctx := context.Background()

	handler.Handle(ctx, MissingSubject().WithEmail("a", "en"))
	handler.Handle(ctx, NewConfigError(ErrCodeConfigInvalid, "bad"))
	handler.Handle(ctx, errors.New("plain"))
	handler.Handle(ctx, nil)

	assert.Len(t, logger.warns, 1)
	assert.Len(t, logger.errs, 2)
}
