// Package codec holds the error taxonomy shared by every wire decoder and a
// few helpers for reading the gjson values they are built on.
package codec

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/tidwall/gjson"
)

// Kind classifies a decode failure.
type Kind int

const (
	MissingField Kind = iota + 1
	DuplicateField
	WrongLength
	UnknownVariant
	Malformed
)

var kindNames = map[Kind]string{
	MissingField:   "missing field",
	DuplicateField: "duplicate field",
	WrongLength:    "wrong length",
	UnknownVariant: "unknown variant",
	Malformed:      "malformed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown codec error"
}

// Sentinels to match with errors.Is against any *Error of the same Kind.
var (
	ErrMissingField   = &Error{Kind: MissingField}
	ErrDuplicateField = &Error{Kind: DuplicateField}
	ErrWrongLength    = &Error{Kind: WrongLength}
	ErrUnknownVariant = &Error{Kind: UnknownVariant}
	ErrMalformed      = &Error{Kind: Malformed}
)

// Error is a typed wire codec failure.
type Error struct {
	Kind Kind
	// Field is the object key or array element the failure was found at.
	Field  string
	Detail string
}

func (e *Error) Error() (s string) {
	s = "codec: " + e.Kind.String()
	if e.Field != "" {
		s += " '" + e.Field + "'"
	}
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return
}

// Is matches any *Error with the same Kind so the sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf builds an *Error of kind k for field.
func Errorf(k Kind, field, format string, a ...any) *Error {
	return &Error{Kind: k, Field: field, Detail: fmt.Sprintf(format, a...)}
}

// Parse validates b as JSON and returns the parsed root.
func Parse(b []byte) (r gjson.Result, err error) {
	if !gjson.ValidBytes(b) {
		err = Errorf(Malformed, "", "invalid JSON")
		return
	}
	r = gjson.ParseBytes(b)
	return
}

// String requires r to be a JSON string.
func String(r gjson.Result, field string) (s string, err error) {
	if !r.Exists() {
		err = Errorf(MissingField, field, "")
		return
	}
	if r.Type != gjson.String {
		err = Errorf(Malformed, field, "expected string, got %s", r.Type)
		return
	}
	s = r.Str
	return
}

// Int requires r to be a JSON number holding an integer that fits in 64 bits.
func Int(r gjson.Result, field string) (n int64, err error) {
	if !r.Exists() {
		err = Errorf(MissingField, field, "")
		return
	}
	if r.Type != gjson.Number {
		err = Errorf(Malformed, field, "expected integer, got %s", r.Type)
		return
	}
	if n, err = strconv.ParseInt(r.Raw, 10, 64); err != nil {
		err = Errorf(Malformed, field, "expected integer, got %s", r.Raw)
		return
	}
	return
}

// Bool requires r to be true or false.
func Bool(r gjson.Result, field string) (b bool, err error) {
	switch r.Type {
	case gjson.True:
		b = true
	case gjson.False:
	default:
		if !r.Exists() {
			err = Errorf(MissingField, field, "")
			return
		}
		err = Errorf(Malformed, field, "expected boolean, got %s", r.Type)
	}
	return
}

// Hex decodes a hex string value into dst, requiring exactly len(dst) bytes.
func Hex(dst []byte, r gjson.Result, field string) (err error) {
	var s string
	if s, err = String(r, field); err != nil {
		return
	}
	var n int
	if n, err = hex.DecFixed(dst, s); err != nil {
		if errors.Is(err, hex.ErrWrongLength) {
			return Errorf(WrongLength, field, "expected %d bytes, got %d",
				len(dst), n)
		}
		return Errorf(Malformed, field, "invalid hex: %v", err)
	}
	return
}
