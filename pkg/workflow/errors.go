package workflow

import (
	"errors"
	"fmt"

	"github.com/craftmerge/go-regform/pkg/model"
)

var (
	// ErrSubmitInProgress is returned when a submit or resend is triggered
	// while the previous one is still running. No request is issued.
	ErrSubmitInProgress = errors.New("workflow: submit in progress")
	// ErrClosed is returned after Close; late results are dropped.
	ErrClosed = errors.New("workflow: closed")
)

func unknownField(key string) error {
	return fmt.Errorf("workflow: %w %q", model.ErrUnknownField, key)
}

func kindMismatch(field model.Field) error {
	return fmt.Errorf("workflow: %w: %q is %s", model.ErrKindMismatch, field.Key, field.Kind)
}
