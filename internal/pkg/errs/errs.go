package errs

import (
	cr "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return cr.New(msg)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

// Mark gives err the identity of markErr: errors.Is matches the mark, while
// the original error stays in the message and the verbose %+v chain.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.WithSecondaryError(cr.WithMessage(markErr, err.Error()), err)
}
