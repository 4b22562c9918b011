// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an object is not found
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when a value provided by the user or the
	// configuration cannot be used
	ErrInvalid = errors.New("invalid")

	// ErrUnsupported is returned when a requested runtime or option is not
	// available on this host
	ErrUnsupported = errors.New("unsupported")
)

// ExitError carries the exit status of a build process which terminated
// unsuccessfully.  The CLI exits with the same code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with status %d", e.Code)
}

// NewExitError returns an *ExitError for a non-zero exit code and nil
// otherwise.
func NewExitError(code int) error {
	if code == 0 {
		return nil
	}

	return &ExitError{Code: code}
}

// ExitCode returns the exit code carried by err, 0 if err is nil and 1 if err
// does not wrap an *ExitError.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return 1
}

// IsNotFoundError returns true if the unwrapped error is ErrNotFound
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidError returns true if the unwrapped error is ErrInvalid
func IsInvalidError(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsUnsupportedError returns true if the unwrapped error is ErrUnsupported
func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
