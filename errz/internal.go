package errz

import (
	"fmt"

	"github.com/lacelang/lace/errors"
)

// InternalError indicates malformed bytecode or a bug in the compiler or
// virtual machine. It is never caused by a well-formed program.
type InternalError struct {
	Message   string
	SourceTag string
	Function  string
	IP        int
	Cause     error
}

// NewInternalError returns an InternalError with a formatted message.
func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...), IP: -1}
}

func (e *InternalError) Error() string {
	msg := "internal error: " + e.Message
	if e.Function != "" && e.IP >= 0 {
		msg += fmt.Sprintf(" (in %s at ip %d)", e.Function, e.IP)
	}
	return msg
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func (e *InternalError) ToFormatted() *errors.FormattedError {
	fe := &errors.FormattedError{
		Code:     errors.E9001,
		Kind:     "internal error",
		Message:  e.Message,
		Filename: e.SourceTag,
	}
	if e.Function != "" && e.IP >= 0 {
		fe.Note = fmt.Sprintf("in %s at instruction %d", e.Function, e.IP)
	}
	return fe
}

func (e *InternalError) FriendlyErrorMessage() string {
	return errors.NewFormatter(false).Format(e.ToFormatted())
}
