// Package errors defines the error classification used across itemstore.
//
// Errors fall into three classes: transient conditions that may clear on
// their own, invalid input or configuration, and fatal conditions that
// should stop processing. Components wrap failures with WrapTransient,
// WrapInvalid, or WrapFatal so callers can branch on class with IsTransient,
// IsInvalid, and IsFatal without inspecting error text.
package errors
