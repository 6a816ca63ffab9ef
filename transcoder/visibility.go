package transcoder

import (
	"strings"

	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/value"
)

// Field name markers. A protected or private name is wrapped as
// "\x00" + marker + "\x00" + name.
const (
	markerProtected = "*"
	markerPrivate   = "A"
)

// FieldName is a field name with its visibility wrapper removed.
type FieldName struct {
	Name       string
	Declaring  string
	Visibility value.Visibility
}

// SplitFieldName strips the visibility wrapper from a wire field name.
// Names shorter than three bytes or not starting with NUL are public.
// A marker other than "*" and "A" is the declaring class of a private field,
// so a class literally named A reads as a private field without one.
func SplitFieldName(raw string) (FieldName, error) {
	if len(raw) < 3 || raw[0] != 0 {
		return FieldName{Name: raw}, nil
	}
	end := strings.IndexByte(raw[1:], 0)
	if end < 0 {
		return FieldName{}, errors.New(errors.PhaseDecode, errors.KindBadVisibility).
			Value(raw).
			Detail("field name %q has no closing NUL after its marker", raw).
			Build()
	}
	marker := raw[1 : 1+end]
	name := raw[2+end:]

	switch {
	case marker == "":
		return FieldName{}, errors.New(errors.PhaseDecode, errors.KindBadVisibility).
			Value(raw).
			Detail("field name %q has an empty visibility marker", raw).
			Build()
	case marker == markerProtected:
		return FieldName{Name: name, Visibility: value.Protected}, nil
	case marker == markerPrivate:
		return FieldName{Name: name, Visibility: value.Private}, nil
	}
	return FieldName{Name: name, Declaring: marker, Visibility: value.Private}, nil
}

// JoinFieldName applies the visibility wrapper to a field name.
func JoinFieldName(f value.Field) string {
	switch f.Visibility {
	case value.Protected:
		return "\x00" + markerProtected + "\x00" + f.Name
	case value.Private:
		marker := f.Declaring
		if marker == "" {
			marker = markerPrivate
		}
		return "\x00" + marker + "\x00" + f.Name
	}
	return f.Name
}
