package answer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads an answer set from JSON. Both the bare form
// {"Q1":"A","Q3":["A","B"]} and the request envelope {"answers":{...}} are
// accepted, so a saved API request body can be replayed from disk.
func Decode(r io.Reader) (Set, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("answer: decode: %w", err)
	}
	if inner, ok := raw["answers"]; ok && len(raw) == 1 {
		var set Set
		if err := json.Unmarshal(inner, &set); err != nil {
			return nil, fmt.Errorf("answer: decode answers: %w", err)
		}
		if set == nil {
			set = Set{}
		}
		return set, nil
	}

	set := make(Set, len(raw))
	for id, data := range raw {
		var v Value
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("answer: %s: %w", id, err)
		}
		set[id] = v
	}
	return set, nil
}

// ReadFile decodes the answer set stored at path.
func ReadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("answer: open: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
