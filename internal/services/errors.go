package services

import "errors"

// Kind classifies a workflow failure for callers and for HTTP status mapping.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotFound       Kind = "not_found"
	KindDecode         Kind = "decode_error"
	KindStorageWrite   Kind = "storage_write_error"
	KindRecordWrite    Kind = "record_write_error"
	KindExport         Kind = "export_error"
	KindUnauthorized   Kind = "unauthorized"
	KindInternal       Kind = "internal_error"
)

// Error is a classified failure carrying a user-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest, Msg: "invalid request"}
	ErrNotFound       = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrDecode         = &Error{Kind: KindDecode, Msg: "malformed photo data"}
	ErrStorageWrite   = &Error{Kind: KindStorageWrite, Msg: "failed to store photo"}
	ErrRecordWrite    = &Error{Kind: KindRecordWrite, Msg: "failed to save photo record"}
	ErrExport         = &Error{Kind: KindExport, Msg: "failed to export album"}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized, Msg: "unauthorized"}
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of a classified error, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing part of a classified error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
