package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Arg is a motion parameter token emitted verbatim into generated code.
// It is either an integer literal ("-1800", "20000") or a C identifier
// naming a controller constant ("NEEDLE_S_Z_REMOVE_SPEED").
type Arg string

var argPattern = regexp.MustCompile(`^(-?[0-9]+|[A-Za-z_][A-Za-z0-9_]*)$`)

// Valid reports whether a is an integer literal or identifier.
func (a Arg) Valid() bool {
	return argPattern.MatchString(string(a))
}

// IsInt reports whether a is an integer literal.
func (a Arg) IsInt() bool {
	_, err := strconv.ParseInt(string(a), 10, 64)
	return err == nil
}

// Negate returns the negated token for integer literals ("1800" -> "-1800")
// and a unary minus expression for identifiers.
func (a Arg) Negate() Arg {
	s := string(a)
	if strings.HasPrefix(s, "-") {
		return Arg(s[1:])
	}
	return Arg("-" + s)
}

// UnmarshalJSON accepts a JSON string or number.
func (a *Arg) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("arg: %w", err)
	}
	*a = Arg(s)
	return nil
}

// flexInt decodes a JSON number or numeric string into an int64.
// Documents written by older tools store numbers as strings.
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	*n = flexInt(v)
	return nil
}

// flexBool decodes a JSON bool or the strings "true"/"false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("not a boolean: %q", s)
	}
	*b = flexBool(v)
	return nil
}

// scalarText returns the text of a JSON string, number or bool.
func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", fmt.Errorf("empty value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	switch data[0] {
	case '{', '[':
		return "", fmt.Errorf("expected scalar, got %s", data)
	}
	if bytes.Equal(data, []byte("null")) {
		return "", fmt.Errorf("null is not allowed")
	}
	if bytes.ContainsAny(data, ".eE") && data[0] != 't' && data[0] != 'f' {
		return "", fmt.Errorf("floats are not allowed: %s", data)
	}
	return string(data), nil
}
