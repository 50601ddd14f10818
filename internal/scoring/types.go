package scoring

import (
	"sort"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
)

// TypeName is one of the eight DX project types. The string values are the
// labels shown in generated documents.
type TypeName string

const (
	TypeDataCleansing   TypeName = "データ整備"
	TypeVisualization   TypeName = "可視化・KPI"
	TypeStandardization TypeName = "業務標準化"
	TypeWorkflow        TypeName = "ワークフロー電子化"
	TypeIntegration     TypeName = "システム連携"
	TypeInputSupport    TypeName = "入力改善"
	TypeKnowledgeSearch TypeName = "社内ナレッジ検索"
	TypeForecasting     TypeName = "予測・最適化"
)

// typeOrder is the declaration order. It breaks ties in TopTypes.
var typeOrder = []TypeName{
	TypeDataCleansing,
	TypeVisualization,
	TypeStandardization,
	TypeWorkflow,
	TypeIntegration,
	TypeInputSupport,
	TypeKnowledgeSearch,
	TypeForecasting,
}

// Types returns the eight project types in declaration order.
func Types() []TypeName {
	return append([]TypeName(nil), typeOrder...)
}

// ParseType returns the TypeName whose label is s.
func ParseType(s string) (TypeName, bool) {
	for _, t := range typeOrder {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ─── RULES ────────────────────────────────────────────────────────────────────

// facts is a read-only view over an answer set with the two comparisons the
// rules need.
type facts answer.Set

// is reports whether the scalar form of qid is one of keys.
func (f facts) is(qid string, keys ...string) bool {
	got := answer.Set(f).Get(qid).Scalar()
	for _, k := range keys {
		if got == k {
			return true
		}
	}
	return false
}

// has reports whether key is among qid's selected keys.
func (f facts) has(qid, key string) bool {
	return answer.Set(f).Get(qid).Has(key)
}

// Rule adds Delta to Type's score when its predicate holds, recording Reason.
type Rule struct {
	Name   string
	Type   TypeName
	Delta  int
	Reason string
	when   func(facts) bool
}

// Applies reports whether the rule fires for set.
func (r Rule) Applies(set answer.Set) bool { return r.when(facts(set)) }

// rules is evaluated top to bottom; reasons accumulate in this order.
var rules = []Rule{
	{
		Name: "unstable_master_data", Type: TypeDataCleansing, Delta: 4,
		Reason: "マスタ/データ品質が不安定（表記揺れ・重複・個人PCなど）",
		when:   func(f facts) bool { return f.is("Q15", "C", "D") || f.has("Q13", "D") },
	},
	{
		Name: "numbers_invisible", Type: TypeVisualization, Delta: 3,
		Reason: "数値が見えない/合わない、またはデータ活用テーマ",
		when: func(f facts) bool {
			return f.is("Q4", "E") || (f.has("Q3", "E") && (f.has("Q13", "B") || f.has("Q13", "C")))
		},
	},
	{
		Name: "exceptions_without_rules", Type: TypeStandardization, Delta: 3,
		Reason: "例外が多い＋ルールが属人/未整備",
		when:   func(f facts) bool { return f.is("Q9", "C", "D") && f.is("Q12", "B", "C", "D") },
	},
	{
		Name: "paper_back_office", Type: TypeWorkflow, Delta: 3,
		Reason: "バックオフィス×紙/Excel中心（申請・承認の電子化が効く）",
		when:   func(f facts) bool { return f.has("Q3", "A") && f.is("Q10", "A", "B", "E") },
	},
	{
		Name: "double_entry", Type: TypeIntegration, Delta: 3,
		Reason: "二重入力が多い（連携/自動化で削減余地）",
		when:   func(f facts) bool { return f.is("Q11", "C", "D") },
	},
	{
		Name: "integration_available", Type: TypeIntegration, Delta: 2,
		Reason: "API/CSV連携が可能",
		when:   func(f facts) bool { return f.is("Q20", "A", "B") },
	},
	{
		Name: "frontline_input_load", Type: TypeInputSupport, Delta: 3,
		Reason: "紙/Excel中心で現場/フロントの入力負荷が高い",
		when:   func(f facts) bool { return f.is("Q10", "A", "B") && (f.has("Q3", "C") || f.has("Q3", "B")) },
	},
	{
		Name: "knowledge_theme", Type: TypeKnowledgeSearch, Delta: 4,
		Reason: "情報共有/ナレッジがテーマ",
		when:   func(f facts) bool { return f.has("Q3", "D") },
	},
	{
		Name: "fresh_data", Type: TypeForecasting, Delta: 2,
		Reason: "日次以上でデータ更新（予測/最適化の土台がある）",
		when:   func(f facts) bool { return f.has("Q3", "E") && f.is("Q17", "C", "D") },
	},
	{
		Name: "dirty_data_first", Type: TypeForecasting, Delta: -1,
		Reason: "ただしデータ品質が課題（先にデータ整備が必要）",
		when:   func(f facts) bool { return f.has("Q3", "E") && f.is("Q15", "C", "D") },
	},
}

// Rules returns the affinity rules in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// ─── SCORES ───────────────────────────────────────────────────────────────────

// TypeScores is the affinity of an answer set to every project type. Every
// type has an entry in both maps, possibly zero or empty.
type TypeScores struct {
	Scores  map[TypeName]int      `json:"scores"`
	Reasons map[TypeName][]string `json:"reasons"`
}

// Types runs the affinity rules over set.
func (s *Scorer) Types(set answer.Set) TypeScores {
	out := TypeScores{
		Scores:  make(map[TypeName]int, len(typeOrder)),
		Reasons: make(map[TypeName][]string, len(typeOrder)),
	}
	for _, t := range typeOrder {
		out.Scores[t] = 0
		out.Reasons[t] = []string{}
	}

	f := facts(set)
	for _, r := range rules {
		if !r.when(f) {
			continue
		}
		out.Scores[r.Type] += r.Delta
		out.Reasons[r.Type] = append(out.Reasons[r.Type], r.Reason)
	}
	return out
}

// Top is TopTypes over ts.Scores.
func (ts TypeScores) Top(k int) []TypeName { return TopTypes(ts.Scores, k) }

// TopTypes returns the k highest-scoring types, descending, ties broken by
// declaration order. k <= 0 means 3; k is capped at the number of types.
func TopTypes(scores map[TypeName]int, k int) []TypeName {
	if k <= 0 {
		k = 3
	}
	ranked := Types()
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}
