// Package sl holds small helpers for building slog attributes.
package sl

import "log/slog"

// Err wraps err into an "error" attribute. A nil error is rendered as an empty string
// so that deferred logging of optional errors never panics.
//
//	log.Error("failed to charge credits", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
