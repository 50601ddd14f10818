// Package answer models a respondent's answers and checks them against the
// catalogue's cardinality rules.
package answer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
)

// Value is the answer to one question.
//
// List records the form the caller used: true for an array (multi-select
// form), false for a scalar. The validator compares it with the question's
// Multi flag; scoring ignores it.
type Value struct {
	Keys []string
	List bool
}

// Single returns a scalar value. An empty key yields an empty (missing) value.
func Single(key string) Value {
	if key == "" {
		return Value{}
	}
	return Value{Keys: []string{key}}
}

// Multi returns a list value with duplicates removed. The first occurrence of
// each key keeps its position.
func Multi(keys ...string) Value {
	return Value{Keys: dedup(keys), List: true}
}

func dedup(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Empty reports whether the value carries no keys.
func (v Value) Empty() bool { return len(v.Keys) == 0 }

// Has reports whether key is among the selected keys.
func (v Value) Has(key string) bool {
	for _, k := range v.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Scalar is the textual form of the value: the key itself for a single
// selection, or the keys joined with "," otherwise. Rules compare against it
// and reasons print it.
func (v Value) Scalar() string {
	return strings.Join(v.Keys, ",")
}

// MarshalJSON writes a scalar value as a string and a list value as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.List {
		keys := v.Keys
		if keys == nil {
			keys = []string{}
		}
		return json.Marshal(keys)
	}
	return json.Marshal(v.Scalar())
}

// UnmarshalJSON accepts a string or an array of strings. Arrays are
// deduplicated; "" and [] decode to an empty value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var keys []string
		if err := json.Unmarshal(data, &keys); err != nil {
			return fmt.Errorf("answer: list value: %w", err)
		}
		*v = Multi(keys...)
		return nil
	}

	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return fmt.Errorf("answer: value must be a string or an array of strings: %w", err)
	}
	*v = Single(key)
	return nil
}

// ─── SET ──────────────────────────────────────────────────────────────────────

// Set maps question id → Value. A missing entry and an empty value are
// equivalent.
type Set map[string]Value

// Get returns the value for qid, or the zero Value.
func (s Set) Get(qid string) Value { return s[qid] }

// Clone returns a deep copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id, v := range s {
		out[id] = Value{Keys: append([]string(nil), v.Keys...), List: v.List}
	}
	return out
}

// Clamp returns a copy of s in which every list answer to a capped question
// keeps only its first MaxSelections keys. This mirrors the questionnaire UI
// and is applied at the API edge; the scoring engine itself never clamps.
func (s Set) Clamp(cat *catalog.Catalog) Set {
	out := s.Clone()
	for id, v := range out {
		q, ok := cat.Question(id)
		if !ok || q.MaxSelections == 0 || len(v.Keys) <= q.MaxSelections {
			continue
		}
		v.Keys = v.Keys[:q.MaxSelections]
		out[id] = v
	}
	return out
}
