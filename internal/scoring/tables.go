// Package scoring turns an answer set into the three diagnoses: project
// difficulty, rollout risk and the ranked DX project types. It depends only
// on the answer model and never touches I/O beyond loading table overrides.
package scoring

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTables is wrapped by every Tables validation failure.
var ErrInvalidTables = errors.New("scoring: invalid tables")

// Weight pairs a question with its multiplier in a composite score.
type Weight struct {
	QuestionID string `yaml:"question" json:"question"`
	Weight     int    `yaml:"weight"   json:"weight"`
}

// Tables holds the per-option badness grades and the weight lists of the two
// composite scores. Weight order is significant: reasons are emitted in it.
//
// YAML shape:
//
//	badness:
//	  Q7: {A: 0, B: 1, C: 2, D: 3}
//	difficulty:
//	  - {question: Q7, weight: 2}
//	risk:
//	  - {question: Q12, weight: 2}
type Tables struct {
	Badness    map[string]map[string]int `yaml:"badness"    json:"badness"`
	Difficulty []Weight                  `yaml:"difficulty" json:"difficulty"`
	Risk       []Weight                  `yaml:"risk"       json:"risk"`
}

// maxBadness is the top of the badness scale; the reason threshold sits one
// below it.
const maxBadness = 3

var (
	ascending   = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}
	dipAtTheEnd = map[string]int{"A": 0, "B": 1, "C": 3, "D": 2}
)

// DefaultTables returns a fresh copy of the built-in grading tables.
func DefaultTables() Tables {
	return Tables{
		Badness: map[string]map[string]int{
			"Q7":  copyGrades(ascending),
			"Q9":  copyGrades(ascending),
			"Q14": copyGrades(ascending),
			"Q15": copyGrades(ascending),
			"Q16": copyGrades(ascending),
			"Q18": copyGrades(dipAtTheEnd),
			"Q19": copyGrades(ascending),
			"Q20": copyGrades(dipAtTheEnd),
			"Q22": copyGrades(ascending),
			"Q12": copyGrades(ascending),
			"Q21": copyGrades(ascending),
			"Q23": copyGrades(ascending),
			"Q24": copyGrades(dipAtTheEnd),
			// Both extremes of the timeline are risky: "urgent" and "undecided".
			"Q25": {"A": 2, "B": 1, "C": 0, "D": 0, "E": 2},
		},
		Difficulty: []Weight{
			{"Q7", 2}, {"Q9", 2}, {"Q14", 2}, {"Q15", 2}, {"Q16", 1},
			{"Q18", 1}, {"Q19", 1}, {"Q20", 2}, {"Q22", 1},
		},
		Risk: []Weight{
			{"Q12", 2}, {"Q14", 2}, {"Q15", 2}, {"Q16", 2},
			{"Q21", 2}, {"Q23", 2}, {"Q24", 2}, {"Q25", 1},
		},
	}
}

func copyGrades(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate checks that every grade is in [0, 3], every weight is at least 1,
// no question is weighted twice in one list and every weighted question has a
// badness table. Call it once at startup, not per request.
func (t Tables) Validate() error {
	for qid, grades := range t.Badness {
		for key, g := range grades {
			if g < 0 || g > maxBadness {
				return fmt.Errorf("%w: badness %s.%s=%d out of range [0,%d]", ErrInvalidTables, qid, key, g, maxBadness)
			}
		}
	}
	for name, list := range map[string][]Weight{"difficulty": t.Difficulty, "risk": t.Risk} {
		if len(list) == 0 {
			return fmt.Errorf("%w: %s weights must not be empty", ErrInvalidTables, name)
		}
		seen := make(map[string]struct{}, len(list))
		for _, w := range list {
			if w.Weight < 1 {
				return fmt.Errorf("%w: %s weight for %s=%d, must be >= 1", ErrInvalidTables, name, w.QuestionID, w.Weight)
			}
			if _, ok := t.Badness[w.QuestionID]; !ok {
				return fmt.Errorf("%w: %s weights %s but it has no badness table", ErrInvalidTables, name, w.QuestionID)
			}
			if _, dup := seen[w.QuestionID]; dup {
				return fmt.Errorf("%w: %s weights %s twice", ErrInvalidTables, name, w.QuestionID)
			}
			seen[w.QuestionID] = struct{}{}
		}
	}
	return nil
}

// LoadTables decodes a YAML override and validates it. Fields that are absent
// from the document keep their default value.
func LoadTables(r io.Reader) (Tables, error) {
	t := DefaultTables()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Tables{}, fmt.Errorf("scoring: decode tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// LoadTablesFile opens path and calls LoadTables. An empty path returns
// DefaultTables().
func LoadTablesFile(path string) (Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Tables{}, fmt.Errorf("scoring: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := LoadTables(f)
	if err != nil {
		return Tables{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
