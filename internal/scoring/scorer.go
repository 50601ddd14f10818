package scoring

import (
	"fmt"
	"strings"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
)

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

// Level thresholds. A score at or below the first bound is the low bucket, at
// or below the second the middle bucket, above it the high bucket.
const (
	difficultySmallMax  = 10
	difficultyMediumMax = 18

	riskLowMax    = 10
	riskMediumMax = 18

	// reasonThreshold is the badness at which a question is called out.
	reasonThreshold = 2

	// maxReasons caps the reason list of a composite score.
	maxReasons = 5
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Level is the bucket a composite score falls into. The string values appear
// verbatim in generated documents.
type Level string

const (
	DifficultySmall  Level = "S"
	DifficultyMedium Level = "M"
	DifficultyLarge  Level = "L"

	RiskLow    Level = "低"
	RiskMedium Level = "中"
	RiskHigh   Level = "高"
)

// Result is the output of a composite score.
type Result struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons"`
}

// Scorer evaluates answer sets against a validated set of tables. It is
// immutable after construction and safe for concurrent use.
type Scorer struct {
	tables Tables
}

// NewScorer validates t and returns a Scorer over it.
func NewScorer(t Tables) (*Scorer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{tables: t}, nil
}

// Default returns a Scorer over DefaultTables.
func Default() *Scorer {
	s, err := NewScorer(DefaultTables())
	if err != nil {
		panic(err)
	}
	return s
}

// ─── CORE FUNCTIONS ───────────────────────────────────────────────────────────

// Badness grades one answer: the worst grade among its selected keys. Keys
// that are not in the question's table, and questions without a table, grade
// 0. An empty value grades 0.
func (s *Scorer) Badness(qid string, v answer.Value) int {
	grades, ok := s.tables.Badness[qid]
	if !ok {
		return 0
	}
	worst := 0
	for _, k := range v.Keys {
		if g := grades[k]; g > worst {
			worst = g
		}
	}
	return worst
}

// Difficulty scores how hard the project will be to deliver.
func (s *Scorer) Difficulty(set answer.Set) Result {
	score, reasons := s.composite(set, s.tables.Difficulty, "%s が重め（選択=%s）")
	return Result{
		Score:   score,
		Level:   bucket(score, difficultySmallMax, difficultyMediumMax, DifficultySmall, DifficultyMedium, DifficultyLarge),
		Reasons: reasons,
	}
}

// Risk scores how likely the rollout is to go wrong.
func (s *Scorer) Risk(set answer.Set) Result {
	score, reasons := s.composite(set, s.tables.Risk, "%s が炎上要因（選択=%s）")
	return Result{
		Score:   score,
		Level:   bucket(score, riskLowMax, riskMediumMax, RiskLow, RiskMedium, RiskHigh),
		Reasons: reasons,
	}
}

// composite sums badness × weight over the list. Every question whose badness
// reaches reasonThreshold contributes a reason, in list order, capped at
// maxReasons.
func (s *Scorer) composite(set answer.Set, weights []Weight, reasonFormat string) (int, []string) {
	score := 0
	reasons := []string{}
	for _, w := range weights {
		v := set.Get(w.QuestionID)
		b := s.Badness(w.QuestionID, v)
		score += b * w.Weight
		if b >= reasonThreshold {
			reasons = append(reasons, fmt.Sprintf(reasonFormat, w.QuestionID, strings.Join(v.Keys, ",")))
		}
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return score, reasons
}

// bucket maps a score onto three levels with inclusive upper bounds.
func bucket(score, lowMax, midMax int, low, mid, high Level) Level {
	switch {
	case score <= lowMax:
		return low
	case score <= midMax:
		return mid
	default:
		return high
	}
}
