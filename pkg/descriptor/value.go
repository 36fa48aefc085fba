package descriptor

import (
	"encoding/json"
	"strconv"
	"strings"
)

// looseFloat is a float64 that tolerates the loose typing of exported
// descriptors: JSON numbers, quoted numbers, null, or garbage. Unparsable
// values decode to 0 rather than failing, per the extractor contract.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	*f = looseFloat(coerceFloat(string(data)))
	return nil
}

// looseInt is the integer counterpart of looseFloat. Fractional values are
// truncated toward zero.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	*n = looseInt(coerceFloat(string(data)))
	return nil
}

// coerceFloat converts a raw JSON token or XML attribute to a float64,
// defaulting to 0 on anything unparsable. Quoted numbers are unwrapped
// first ("\"1920\"" and "1920" both yield 1920).
func coerceFloat(raw string) float64 {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal([]byte(s), &unquoted); err != nil {
			return 0
		}
		s = strings.TrimSpace(unquoted)
	}
	if s == "" || s == "null" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// objectOrList unmarshals a JSON value that may be either a list of T or a
// single bare T. Older tool versions flatten one-element lists to the
// element itself; this restores the list shape.
func objectOrList[T any](data []byte) ([]T, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var list []T
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var single T
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}
