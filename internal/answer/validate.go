package answer

import (
	"fmt"

	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
)

// Validation is the outcome of Validate. Errors holds one message per failing
// question, in catalogue order.
type Validation struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// Message formats. They are part of the external contract: generated error
// documents list them verbatim.
const (
	msgMissing    = "未回答: %s"
	msgWantList   = "%s は複数選択（配列）で渡してください"
	msgWantScalar = "%s は単一選択で渡してください"
)

// Validate checks that every catalogue question has a non-empty answer in the
// right form. A missing question produces only the missing-answer message.
// It never mutates s.
func Validate(cat *catalog.Catalog, s Set) Validation {
	errs := []string{}
	for _, q := range cat.Questions() {
		v, ok := s[q.ID]
		if !ok || v.Empty() {
			errs = append(errs, fmt.Sprintf(msgMissing, q.ID))
			continue
		}
		if q.Multi && !v.List {
			errs = append(errs, fmt.Sprintf(msgWantList, q.ID))
		}
		if !q.Multi && v.List {
			errs = append(errs, fmt.Sprintf(msgWantScalar, q.ID))
		}
	}
	return Validation{OK: len(errs) == 0, Errors: errs}
}

// StepState reports whether one questionnaire page has been fully answered.
type StepState struct {
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
}

// StepStatus applies the questionnaire's "can advance" rule to every step: a
// step is complete when each of its questions has a non-empty value.
// Cardinality is not checked here; Validate does that.
func StepStatus(cat *catalog.Catalog, s Set) []StepState {
	steps := cat.Steps()
	out := make([]StepState, len(steps))
	for i, st := range steps {
		complete := true
		for _, id := range st.QuestionIDs {
			if s.Get(id).Empty() {
				complete = false
				break
			}
		}
		out[i] = StepState{Title: st.Title, Complete: complete}
	}
	return out
}
