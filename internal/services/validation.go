package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"eventmanagement/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*$`)

// fieldErrors collects validation messages and reports them as one InvalidInput error.
type fieldErrors []string

func (f *fieldErrors) add(format string, args ...any) {
	*f = append(*f, fmt.Sprintf(format, args...))
}

func (f *fieldErrors) length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0 && min > 0:
		f.add("%s is required", field)
	case n < min || n > max:
		f.add("%s must be between %d and %d characters", field, min, max)
	}
}

func (f *fieldErrors) maxLength(field string, value *string, max int) {
	if value != nil && utf8.RuneCountInString(*value) > max {
		f.add("%s must be at most %d characters", field, max)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return domain.InvalidInputf("%s", strings.Join(f, "; "))
}

// trimOptional trims s and maps blank values to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// startsAfter reports whether start lies strictly after now when both are
// truncated to the second.
func startsAfter(start, now time.Time) bool {
	return start.Truncate(time.Second).After(now.Truncate(time.Second))
}

// withinTx runs fn in a transaction and returns its value.
func withinTx[T any](ctx context.Context, tx domain.TxManager, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
