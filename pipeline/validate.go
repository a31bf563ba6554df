package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Reject is the structured reason a record was dropped. It is an
// error value, never fatal to the run.
type Reject struct {
	Reason string
}

func (r *Reject) Error() string {
	return r.Reason
}

// AsReject unwraps an error into its reject reason, if it is one.
func AsReject(err error) (*Reject, bool) {
	rej, ok := err.(*Reject)
	return rej, ok
}

const (
	minTitleLength   = 10
	minContentLength = 50
)

var requiredFields = []string{"title", "url", "source_name"}

// Validator accepts or rejects a raw extracted record. Stateless per
// call; safe for concurrent use.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a validation stage.
func NewValidator(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger}
}

// Check validates a record, returning nil to accept or a *Reject to
// drop. Short content is a warning, not a rejection.
func (v *Validator) Check(f Fields) error {
	for _, field := range requiredFields {
		if f.String(field) == "" {
			return &Reject{Reason: fmt.Sprintf("missing required field: %s", field)}
		}
	}

	// Lengths are counted in characters, not bytes; titles in CJK
	// languages are short in runes but wide in UTF-8.
	if utf8.RuneCountInString(f.String("title")) < minTitleLength {
		return &Reject{Reason: "title too short"}
	}

	if content := f.String("content"); content != "" && utf8.RuneCountInString(content) < minContentLength {
		v.logger.Warn("content shorter than expected",
			zap.Int("length", utf8.RuneCountInString(content)),
			zap.String("url", f.String("url")))
	}

	url := f.String("url")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return &Reject{Reason: "invalid url"}
	}

	return nil
}
