// Package catalog holds the 25-question interview that every answer set is
// checked and scored against. A Catalog is built once at startup and is
// read-only afterwards, so it can be shared freely between goroutines.
package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidCatalog wraps every structural problem found by New.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Option is one selectable answer. Key is a single uppercase letter, unique
// within its question.
type Option struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Question is one interview item.
//
// MaxSelections is the selection cap the questionnaire UI applies to
// multi-select questions (0 = uncapped). The scoring engine never enforces it;
// see answer.Set.Clamp.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Help          string   `json:"help,omitempty" yaml:"help,omitempty"`
	Multi         bool     `json:"multi" yaml:"multi"`
	MaxSelections int      `json:"max_selections,omitempty" yaml:"max_selections,omitempty"`
	Options       []Option `json:"options" yaml:"options"`
}

// Option returns the option with the given key.
func (q Question) Option(key string) (Option, bool) {
	for _, o := range q.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// Step groups consecutive questions into one page of the questionnaire.
type Step struct {
	Title       string   `json:"title" yaml:"title"`
	QuestionIDs []string `json:"question_ids" yaml:"question_ids"`
}

// Catalog is the ordered, indexed question list.
type Catalog struct {
	questions []Question
	steps     []Step
	index     map[string]int
}

// ─── CONSTRUCTION ─────────────────────────────────────────────────────────────

// New validates questions and steps and returns an indexed Catalog. The input
// slices are copied; later changes by the caller are not observed.
func New(questions []Question, steps []Step) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidCatalog)
	}

	c := &Catalog{
		questions: make([]Question, len(questions)),
		steps:     make([]Step, len(steps)),
		index:     make(map[string]int, len(questions)),
	}

	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("%w: question %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("%w: question %s has no options", ErrInvalidCatalog, q.ID)
		}
		if q.MaxSelections < 0 || (!q.Multi && q.MaxSelections != 0) {
			return nil, fmt.Errorf("%w: question %s has max_selections=%d", ErrInvalidCatalog, q.ID, q.MaxSelections)
		}
		keys := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			if !validKey(o.Key) {
				return nil, fmt.Errorf("%w: question %s option key %q must be one uppercase letter", ErrInvalidCatalog, q.ID, o.Key)
			}
			if _, dup := keys[o.Key]; dup {
				return nil, fmt.Errorf("%w: question %s has duplicate option key %q", ErrInvalidCatalog, q.ID, o.Key)
			}
			keys[o.Key] = struct{}{}
		}

		q.Options = append([]Option(nil), q.Options...)
		c.questions[i] = q
		c.index[q.ID] = i
	}

	for i, s := range steps {
		for _, id := range s.QuestionIDs {
			if _, ok := c.index[id]; !ok {
				return nil, fmt.Errorf("%w: step %q references unknown question %q", ErrInvalidCatalog, s.Title, id)
			}
		}
		s.QuestionIDs = append([]string(nil), s.QuestionIDs...)
		c.steps[i] = s
	}

	return c, nil
}

func validKey(k string) bool {
	return len(k) == 1 && k[0] >= 'A' && k[0] <= 'Z'
}

// ─── LOOKUP ───────────────────────────────────────────────────────────────────

// Questions returns the questions in catalogue order. The slice is a copy.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Steps returns the questionnaire pages in order. The slice is a copy.
func (c *Catalog) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// IDs returns every question id in catalogue order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.questions))
	for i, q := range c.questions {
		ids[i] = q.ID
	}
	return ids
}

// Len reports the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// Question looks a question up by id.
func (c *Catalog) Question(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Label resolves the human-readable label for an option. Unknown questions and
// unknown keys resolve to the key itself.
func (c *Catalog) Label(qid, key string) string {
	q, ok := c.Question(qid)
	if !ok {
		return key
	}
	if o, ok := q.Option(key); ok {
		return o.Label
	}
	return key
}
