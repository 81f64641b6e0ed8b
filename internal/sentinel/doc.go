// Package sentinel defines Error, a string-backed error type that can be
// declared as a const. readyproc uses it for every sentinel it exports so
// that callers cannot reassign ErrNothingToStop and friends.
package sentinel
