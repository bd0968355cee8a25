package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringSet is an ordered, de-duplicated list of strings persisted as a JSON
// array (jsonb on Postgres, text on SQLite).
type StringSet []string

// NewStringSet trims every entry, drops empties and keeps the first
// occurrence of each value.
func NewStringSet(values ...string) StringSet {
	seen := make(map[string]struct{}, len(values))
	out := make(StringSet, 0, len(values))
	for _, v := range values {
		clean := strings.TrimSpace(v)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}

// SplitStringSet splits a comma-separated list into a StringSet.
func SplitStringSet(raw string) StringSet {
	return NewStringSet(strings.Split(raw, ",")...)
}

// Value marshals the set into a JSON array.
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	buf, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes a JSON array into the set.
func (s *StringSet) Scan(value interface{}) error {
	if value == nil {
		*s = StringSet{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string set: unsupported scan type %T", value)
	}

	var result []string
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*s = StringSet(result)
	return nil
}
