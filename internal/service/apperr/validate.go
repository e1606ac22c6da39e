package apperr

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Fields collects validation failures and reports the first one, which is
// what the API returns.
type Fields struct {
	first *Error
}

func (f *Fields) fail(format string, args ...any) {
	if f.first == nil {
		f.first = Validation(fmt.Sprintf(format, args...))
	}
}

// Err returns nil when every check passed.
func (f *Fields) Err() error {
	if f.first == nil {
		return nil
	}
	return f.first
}

func (f *Fields) Required(name, v string) bool {
	if strings.TrimSpace(v) == "" {
		f.fail("%s is required", name)
		return false
	}
	return true
}

func (f *Fields) Length(name, v string, min, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	switch {
	case min > 0 && n < min:
		f.fail("%s must be at least %d characters", name, min)
	case max > 0 && n > max:
		f.fail("%s cannot exceed %d characters", name, max)
	}
}

func (f *Fields) Email(name, v string) {
	if a, err := mail.ParseAddress(v); err != nil || a.Address != strings.TrimSpace(v) {
		f.fail("%s must be a valid email", name)
	}
}

var cinPattern = regexp.MustCompile(`^\d{8}$`)

func (f *Fields) CIN(v string) {
	if !cinPattern.MatchString(v) {
		f.fail("CIN must contain exactly 8 digits")
	}
}

func (f *Fields) Date(name, v string) {
	if _, err := time.Parse(DateLayout, v); err != nil {
		f.fail("%s must be a date in YYYY-MM-DD format", name)
	}
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (f *Fields) Clock(name, v string) {
	if !clockPattern.MatchString(v) {
		f.fail("%s must be in HH:MM format", name)
	}
}

func (f *Fields) OneOf(name, v string, allowed ...string) {
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	f.fail("%s must be one of %s", name, strings.Join(allowed, ", "))
}

func (f *Fields) Check(ok bool, msg string) {
	if !ok {
		f.fail("%s", msg)
	}
}

const DateLayout = "2006-01-02"
