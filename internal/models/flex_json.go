package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LocalizedString decodes league API names that arrive either as a plain
// string or as a localized object such as {"default": "Connor", "fr": "..."}.
type LocalizedString string

// UnmarshalJSON accepts a string, a localized object, or null.
func (l *LocalizedString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex unmarshal localized string: %w", err)
		}
		*l = LocalizedString(s)
		return nil
	}

	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("flex unmarshal localized string: %w", err)
	}
	if v, ok := obj["default"]; ok {
		*l = LocalizedString(v)
		return nil
	}
	// No default locale; take any value so the name is not lost.
	for _, v := range obj {
		*l = LocalizedString(v)
		break
	}
	return nil
}

// String returns the decoded value.
func (l LocalizedString) String() string { return string(l) }

// FlexInt decodes integers that may be encoded as numbers, quoted numbers or
// floats with a zero fraction.
type FlexInt int

// UnmarshalJSON coerces the supported encodings into an int.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex unmarshal int: %w", err)
		}
		if s == "" {
			*f = 0
			return nil
		}
	}
	if i, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(i)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("flex unmarshal int: cannot coerce %q", s)
	}
	*f = FlexInt(int(fl))
	return nil
}
