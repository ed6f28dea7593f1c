// pthread.  A share-nothing multithreading library.
// Copyright (C) 2019-2025  Yuan Gao
//
// This file is part of pthread.
//
// pthread is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package errors provides the caller-prefixed error message convention
// used throughout this module, plus the error taxonomy this runtime
// raises (capacity, allocation, pool-closed, and join failures).
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/Milky2018/pthread/internal/runtimeutil"
)

// AutoMsg generates an error message by prepending the full package
// path of its caller to msg.
//
// If msg is empty, it uses "<no error message>" instead.
func AutoMsg(msg string) string {
	return autoMsgSkip(msg, 1)
}

// autoMsgSkip is the shared implementation behind AutoMsg and AutoNew.
//
// skip is the number of stack frames to ascend, with 0 identifying the
// caller of autoMsgSkip.
func autoMsgSkip(msg string, skip int) string {
	if msg == "" {
		msg = "<no error message>"
	}
	frame, ok := runtimeutil.CallerFrame(skip + 1)
	if !ok {
		return "(retrieving caller failed) error: " + msg
	}
	pkg, _, ok := runtimeutil.FramePkgFunc(frame)
	if !ok {
		return "(retrieving caller failed) error: " + msg
	}
	return pkg + ": " + msg
}

// AutoNew creates a new error with message msg, prepending the full
// package path of its caller to that message. Unwrapping the result
// yields a plain error whose message is msg itself.
//
// If msg is empty, it uses "<no error message>" in the prefixed
// message instead.
func AutoNew(msg string) error {
	return &autoNewError{msg: autoMsgSkip(msg, 1), err: stderrors.New(msg)}
}

// autoNewError is the error returned by AutoNew.
type autoNewError struct {
	msg string
	err error
}

func (e *autoNewError) Error() string { return e.msg }

func (e *autoNewError) Unwrap() error { return e.err }

// AutoWrap wraps err, prepending the full package path of its caller
// to the error message of err.
//
// It returns nil if err is nil.
func AutoWrap(err error) error {
	if err == nil {
		return nil
	}
	frame, ok := runtimeutil.CallerFrame(1)
	if !ok {
		return fmt.Errorf("(retrieving caller failed): %w", err)
	}
	pkg, _, ok := runtimeutil.FramePkgFunc(frame)
	if !ok {
		return fmt.Errorf("(retrieving caller failed): %w", err)
	}
	return fmt.Errorf("%s: %w", pkg, err)
}

// Is reports whether any error in err's chain matches target.
// It is a re-export of the standard library's errors.Is for callers
// that otherwise only need to import this package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// It is a re-export of the standard library's errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
