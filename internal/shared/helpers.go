// Package shared provides common utility functions used across multiple
// packages in the eups-manifest codebase.
package shared

import (
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorMessage returns the builder message of err when it has one, and the
// full error text otherwise.
func ErrorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}

// HasParentSegment reports whether a slash-separated path has a ".."
// element.
func HasParentSegment(value string) bool {
	for _, part := range strings.Split(value, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
