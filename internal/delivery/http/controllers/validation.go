package controllers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*$`)

// checks accumulates validation messages for a request DTO.
type checks []string

func (c *checks) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		*c = append(*c, field+" is required")
		return false
	}
	return true
}

func (c *checks) length(field, value string, lo, hi int) {
	if !c.required(field, value) {
		return
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(value)); n < lo || n > hi {
		*c = append(*c, fmt.Sprintf("%s must be between %d and %d characters", field, lo, hi))
	}
}

func (c *checks) maxLength(field string, value *string, hi int) {
	if value != nil && utf8.RuneCountInString(strings.TrimSpace(*value)) > hi {
		*c = append(*c, fmt.Sprintf("%s must be at most %d characters", field, hi))
	}
}

func (c *checks) email(field, value string) {
	if !c.required(field, value) {
		return
	}
	if !emailRegexp.MatchString(strings.TrimSpace(value)) {
		*c = append(*c, "invalid "+field+" format")
	}
}

func (c *checks) add(cond bool, msg string) {
	if cond {
		*c = append(*c, msg)
	}
}
