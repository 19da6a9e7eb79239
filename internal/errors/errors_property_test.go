//go:build property

package errors

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestErrorCollectorProperties validates failure collection and ordering
func TestErrorCollectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("concurrent addition loses nothing", prop.ForAll(
		func(goroutines int, perGoroutine int) bool {
			collector := NewErrorCollector()

			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for e := 0; e < perGoroutine; e++ {
						collector.Add(RenderFailure{
							Email:  fmt.Sprintf("email_%d_%d", id, e),
							Locale: "en",
							Target: "html",
							Err:    MissingSubject(),
						})
					}
				}(g)
			}
			wg.Wait()

			return len(collector.GetFailures()) == goroutines*perGoroutine
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 50),
	))

	properties.Property("failures are ordered by locale then email", prop.ForAll(
		func(locales []string, emails []string) bool {
			collector := NewErrorCollector()
			for i := range locales {
				email := "e"
				if i < len(emails) {
					email = emails[i]
				}
				collector.Add(RenderFailure{Email: email, Locale: locales[i], Target: "text"})
			}

			failures := collector.GetFailures()
			for i := 1; i < len(failures); i++ {
				prev, cur := failures[i-1], failures[i]
				if prev.Locale > cur.Locale {
					return false
				}
				if prev.Locale == cur.Locale && prev.Email > cur.Email {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("ar", "en", "fr", "de")),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestWrapProperties validates that wrapping keeps sentinel identity
func TestWrapProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)

	properties := gopter.NewProperties(parameters)

	properties.Property("wrapped render errors keep their sentinel", prop.ForAll(
		func(depth int, message string) bool {
			var err error = MissingSubject()
			for i := 0; i < depth; i++ {
				err = Wrap(err, ErrorTypeRender, ErrCodeInvalidDocument, message)
			}
			return errors.Is(err, ErrMissingSubject) && IsRenderError(err)
		},
		gen.IntRange(0, 10),
		gen.AlphaString(),
	))

	properties.Property("wrapping never mutates the inner context", prop.ForAll(
		func(key string) bool {
			inner := MissingTemplatePlaceholder("footer")
			outer := Wrap(inner, ErrorTypeRender, ErrCodeInvalidDocument, "render").WithContext(key, "x")
			_, leaked := inner.Context[key]
			return outer.Context[key] == "x" && (key == "placeholder" || !leaked)
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
