package errors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// RenderFailure records one failed (email, locale, target) render.
type RenderFailure struct {
	Email     string
	Locale    string
	Target    string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (rf *RenderFailure) Error() string {
	return fmt.Sprintf("%s/%s [%s]: %v", rf.Locale, rf.Email, rf.Target, rf.Err)
}

// Unwrap returns the underlying render error
func (rf *RenderFailure) Unwrap() error {
	return rf.Err
}

// ErrorCollector collects render failures and general errors from a batch
// run. It is safe for concurrent use.
type ErrorCollector struct {
	failures []RenderFailure
	errors   []error
	mutex    sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		failures: make([]RenderFailure, 0),
		errors:   make([]error, 0),
	}
}

// Add adds a render failure to the collector
func (ec *ErrorCollector) Add(failure RenderFailure) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	failure.Timestamp = time.Now()
	ec.failures = append(ec.failures, failure)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetFailures returns all render failures sorted by locale, email and target
func (ec *ErrorCollector) GetFailures() []RenderFailure {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]RenderFailure, len(ec.failures))
	copy(result, ec.failures)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Locale != result[j].Locale {
			return result[i].Locale < result[j].Locale
		}
		if result[i].Email != result[j].Email {
			return result[i].Email < result[j].Email
		}
		return result[i].Target < result[j].Target
	})
	return result
}

// GetAllErrors returns all collected errors (render failures first)
func (ec *ErrorCollector) GetAllErrors() []error {
	failures := ec.GetFailures()

	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	allErrors := make([]error, 0, len(failures)+len(ec.errors))
	for i := range failures {
		allErrors = append(allErrors, &failures[i])
	}
	allErrors = append(allErrors, ec.errors...)

	return allErrors
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.failures) > 0 || len(ec.errors) > 0
}

// Count returns the number of collected failures and errors
func (ec *ErrorCollector) Count() int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.failures) + len(ec.errors)
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.failures = ec.failures[:0]
	ec.errors = ec.errors[:0]
}

// GetFailuresByEmail returns failures for a specific email across locales
func (ec *ErrorCollector) GetFailuresByEmail(email string) []RenderFailure {
	var out []RenderFailure
	for _, failure := range ec.GetFailures() {
		if failure.Email == email {
			out = append(out, failure)
		}
	}
	return out
}
