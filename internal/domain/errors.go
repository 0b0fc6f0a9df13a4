package domain

import (
	"errors"
	"fmt"
)

// Kind 错误类别，传输层按类别映射到固定状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindForbidden
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}
func Conflict(msg string) error  { return &Error{Kind: KindConflict, Msg: msg} }
func NotFound(msg string) error  { return &Error{Kind: KindNotFound, Msg: msg} }
func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Msg: msg} }
func Auth(msg string) error      { return &Error{Kind: KindAuth, Msg: msg} }

// Internal 包装存储层等非业务错误，Msg 不对外暴露
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf 返回 err 链上第一个 *Error 的类别；非 *Error 视为 KindInternal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Is 判断 err 是否属于 kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
