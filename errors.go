// errors.go: typed error taxonomy for the chirpy logging pipeline.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/agilira/go-errors"
)

// ErrorCode identifies a chirpy failure kind. All values carry the CHIRPY_
// prefix; this is validated once at package init so a typo never silently
// produces an unrecognized code.
type ErrorCode string

const (
	// ErrFormatter means a formatter failed while serializing a record.
	ErrFormatter ErrorCode = "CHIRPY_FORMATTER"
	// ErrWrite means an I/O failure occurred on append, flush or rotate.
	ErrWrite ErrorCode = "CHIRPY_WRITE"
	// ErrPathResolution means a deferred base path failed to resolve.
	ErrPathResolution ErrorCode = "CHIRPY_PATH_RESOLUTION"
	// ErrRotation means rename, compress or delete failed during rotation.
	ErrRotation ErrorCode = "CHIRPY_ROTATION"
	// ErrInterceptor means an interceptor panicked or returned malformed state.
	ErrInterceptor ErrorCode = "CHIRPY_INTERCEPTOR"
	// ErrConfig means a config file failed to load or parse for the
	// hot-reload watcher.
	ErrConfig ErrorCode = "CHIRPY_CONFIG"
)

var allErrorCodes = []ErrorCode{
	ErrFormatter, ErrWrite, ErrPathResolution, ErrRotation, ErrInterceptor, ErrConfig,
}

func init() {
	validateErrorCodes()
}

func validateErrorCodes() {
	for _, c := range allErrorCodes {
		if !strings.HasPrefix(string(c), "CHIRPY_") {
			panic(fmt.Sprintf("chirpy: error code %q missing CHIRPY_ prefix", c))
		}
	}
}

// NewError builds a *errors.Error for code, enriched with the caller's
// file, line and function so diagnostics point at the failing site rather
// than this helper. Exported so collaborator packages (rotatingwriter,
// rotatingreader) raise errors through the same taxonomy.
func NewError(code ErrorCode, msg string) *errors.Error {
	e := errors.New(errors.ErrorCode(code), msg).WithSeverity("error").WithContext("component", "chirpy")
	return enrichWithCaller(e)
}

// WrapError wraps cause under code, preserving cause in the chain.
func WrapError(code ErrorCode, cause error, msg string) *errors.Error {
	e := errors.Wrap(cause, errors.ErrorCode(code), msg).WithSeverity("error").WithContext("component", "chirpy")
	return enrichWithCaller(e)
}


func enrichWithCaller(e *errors.Error) *errors.Error {
	if pc, file, line, ok := runtime.Caller(2); ok {
		fn := runtime.FuncForPC(pc)
		name := "unknown"
		if fn != nil {
			name = fn.Name()
		}
		e = e.WithContext("caller_file", file).
			WithContext("caller_line", line).
			WithContext("caller_func", name)
	}
	return e
}

// ErrorHandler is invoked whenever a writer, formatter, rotation step or
// interceptor fails. It must not block and must not panic.
type ErrorHandler func(err *errors.Error)

var currentErrorHandler ErrorHandler = defaultErrorHandler

func defaultErrorHandler(err *errors.Error) {
	fmt.Fprintf(os.Stderr, "chirpy: %v\n", err)
}

// SetErrorHandler replaces the package-wide diagnostic sink. Intended to be
// called once at startup, before concurrent logging begins.
func SetErrorHandler(h ErrorHandler) {
	if h == nil {
		h = defaultErrorHandler
	}
	currentErrorHandler = h
}

// GetErrorHandler returns the currently installed handler.
func GetErrorHandler() ErrorHandler {
	return currentErrorHandler
}

func handleError(err *errors.Error) {
	if err == nil {
		return
	}
	currentErrorHandler(err)
}
