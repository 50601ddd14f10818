package document_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
	"github.com/nyashahama/dx-scoping-backend/internal/document"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

var may1 = time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)

func newGenerator() *document.Generator {
	return document.NewGenerator(catalog.Default(), scoring.Default())
}

func scenario() answer.Set {
	s := answer.Set{}
	for _, q := range catalog.Default().Questions() {
		if q.Multi {
			s[q.ID] = answer.Multi("A")
		} else {
			s[q.ID] = answer.Single("A")
		}
	}
	s["Q4"] = answer.Single("E")
	s["Q9"] = answer.Single("C")
	s["Q10"] = answer.Single("B")
	s["Q11"] = answer.Single("C")
	s["Q12"] = answer.Single("B")
	s["Q13"] = answer.Multi("D")
	s["Q15"] = answer.Single("D")
	s["Q17"] = answer.Single("C")
	s["Q20"] = answer.Single("B")
	return s
}

// ─── OnePager ─────────────────────────────────────────────────────────────────

func TestOnePager_Scenario(t *testing.T) {
	got := newGenerator().OnePager(scenario(), document.Options{Now: may1})

	want := strings.Join([]string{
		"# 1枚サマリー（案件化診断）",
		"- 作成日: 2024-05-01",
		"- 主要テーマ: バックオフィス（経理・人事・総務）",
		"- 主要課題: **数字が合わない・見えない**",
		"- 期限: **〜1ヶ月**",
		"",
		"## 推奨案件タイプ（優先順）",
		"1. **システム連携** — 二重入力が多い（連携/自動化で削減余地）; API/CSV連携が可能",
		"2. **データ整備** — マスタ/データ品質が不安定（表記揺れ・重複・個人PCなど）",
		"3. **可視化・KPI** — 数値が見えない/合わない、またはデータ活用テーマ",
		"",
		"## 難易度 / 炎上リスク",
		"- 難易度: **M**（score=12）",
		"  - 理由: Q9 が重め（選択=C） / Q15 が重め（選択=D）",
		"- 炎上リスク: **低**（score=10）",
		"  - 理由: Q15 が炎上要因（選択=D） / Q25 が炎上要因（選択=A）",
		"",
		"## 次の一手（最短）",
		"- ① 前提整理（データ所在/抽出方法/権限/制約）を確定してSOW叩き台を固める",
		"- ② 募集票で提案募集（3名程度）→ 15分×2回でスコープ確定→着手",
	}, "\n")

	assert.Equal(t, want, got)
}

func TestOnePager_FallbackReasonAndNoDifficultyReasons(t *testing.T) {
	s := scenario()
	for _, id := range []string{"Q4", "Q9", "Q10", "Q11", "Q12", "Q15", "Q17", "Q20"} {
		s[id] = answer.Single("A")
	}
	s["Q13"] = answer.Multi("A")

	got := newGenerator().OnePager(s, document.Options{Now: may1})

	// Only the workflow (3) and integration (2) rules fire; the third slot is
	// the first zero-score type.
	assert.Contains(t, got, "1. **ワークフロー電子化** — バックオフィス×紙/Excel中心（申請・承認の電子化が効く）\n")
	assert.Contains(t, got, "2. **システム連携** — API/CSV連携が可能\n")
	assert.Contains(t, got, "3. **データ整備** — （理由：回答から推定）\n")
	assert.Contains(t, got, "- 難易度: **S**（score=0）\n- 炎上リスク:")
}

func TestOnePager_NoTrailingNewline(t *testing.T) {
	got := newGenerator().OnePager(scenario(), document.Options{Now: may1})
	assert.False(t, strings.HasSuffix(got, "\n"))
}

// ─── SOW / JobPost ────────────────────────────────────────────────────────────

func TestSOW_Scenario(t *testing.T) {
	got := newGenerator().SOW(scenario(), document.Options{Now: may1})

	lines := strings.Split(got, "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "# 案件定義書（SOW叩き台）: システム連携", lines[0])
	assert.Equal(t, "- 作成日: 2024-05-01", lines[1])
	assert.Contains(t, lines, "- KPI: 工数削減")
	assert.Contains(t, lines, "- データ所在(Q13): 個人PC")
	assert.Contains(t, lines, "- マスタ品質(Q15): マスタがない/信用できない")
	assert.Contains(t, lines, "- 連携可否(Q20): CSVならOK")
	assert.Contains(t, lines, "- 推奨根拠: 二重入力が多い（連携/自動化で削減余地）; API/CSV連携が可能")
	assert.Contains(t, lines, "- 決裁者: 経営者")
	assert.Equal(t, "- テスト協力（代表ユーザー2名以上）", lines[len(lines)-1])
}

func TestSOW_PrimaryOverrideWithoutReasons(t *testing.T) {
	got := newGenerator().SOW(scenario(), document.Options{
		Primary: scoring.TypeKnowledgeSearch,
		Now:     may1,
	})
	assert.True(t, strings.HasPrefix(got, "# 案件定義書（SOW叩き台）: 社内ナレッジ検索\n"))
	assert.Contains(t, got, "- 推奨根拠: （回答から推定）\n")
}

func TestSOW_MultipleDataLocationsJoinedWithComma(t *testing.T) {
	s := scenario()
	s["Q13"] = answer.Multi("A", "D")
	s["Q5"] = answer.Multi("A", "C")
	got := newGenerator().SOW(s, document.Options{Now: may1})
	assert.Contains(t, got, "- データ所在(Q13): Excel/CSV（共有フォルダ）, 個人PC\n")
	assert.Contains(t, got, "- KPI: 工数削減 / 締め短縮\n")
}

func TestJobPost_Scenario(t *testing.T) {
	got := newGenerator().JobPost(scenario(), document.Options{Now: may1})

	lines := strings.Split(got, "\n")
	assert.Equal(t, "# 募集票（マッチング用）: システム連携", lines[0])
	assert.Contains(t, lines, "- 課題「数字が合わない・見えない」を改善し、期限「〜1ヶ月」までに成果物をリリースする")
	assert.Contains(t, lines, "- 難易度: M / 炎上リスク: 低")
	assert.Contains(t, lines, "- 期間: 〜1ヶ月（目安）")
	assert.Contains(t, lines, "- 予算感: 〜30万")
	assert.Equal(t, "- iPaaS/RPA、BI、権限設計、セキュリティ対応、ドキュメンテーション", lines[len(lines)-1])
}

// ─── Errors ───────────────────────────────────────────────────────────────────

func TestGenerators_InvalidInputYieldsErrorDocument(t *testing.T) {
	s := scenario()
	delete(s, "Q25")
	g := newGenerator()

	for _, kind := range document.Kinds() {
		got, err := g.Generate(kind, s, document.Options{Now: may1})
		require.NoError(t, err, kind)
		assert.Equal(t, "# 入力エラー\n\n- 未回答: Q25", got, kind)
	}
}

func TestErrorDocument_ListsEveryError(t *testing.T) {
	got := document.ErrorDocument([]string{"未回答: Q1", "Q3 は複数選択（配列）で渡してください"})
	assert.Equal(t, "# 入力エラー\n\n- 未回答: Q1\n- Q3 は複数選択（配列）で渡してください", got)
}

func TestGenerate_UnknownKindAndType(t *testing.T) {
	g := newGenerator()

	_, err := g.Generate(document.Kind("pdf"), scenario(), document.Options{})
	assert.True(t, errors.Is(err, document.ErrUnknownKind))

	_, err = g.Generate(document.KindSOW, scenario(), document.Options{Primary: "宇宙開発"})
	assert.True(t, errors.Is(err, document.ErrUnknownType))
}

func TestParseKind(t *testing.T) {
	for _, k := range document.Kinds() {
		got, err := document.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := document.ParseKind("summary")
	assert.ErrorIs(t, err, document.ErrUnknownKind)

	assert.Equal(t, "job_post.md", document.KindJobPost.Filename())
}

func TestParseType(t *testing.T) {
	got, err := document.ParseType("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = document.ParseType("予測・最適化")
	require.NoError(t, err)
	assert.Equal(t, scoring.TypeForecasting, got)

	_, err = document.ParseType("nope")
	assert.ErrorIs(t, err, document.ErrUnknownType)
}

// ─── Determinism ──────────────────────────────────────────────────────────────

func TestGenerate_Idempotent(t *testing.T) {
	g := newGenerator()
	for _, kind := range document.Kinds() {
		a, err := g.Generate(kind, scenario(), document.Options{Now: may1})
		require.NoError(t, err)
		b, err := g.Generate(kind, scenario(), document.Options{Now: may1})
		require.NoError(t, err)
		assert.Equal(t, a, b, kind)
	}
}

func TestGenerate_ZeroNowUsesClock(t *testing.T) {
	g := newGenerator().WithClock(func() time.Time { return time.Date(2030, 12, 31, 23, 0, 0, 0, time.UTC) })
	got := g.OnePager(scenario(), document.Options{})
	assert.Contains(t, got, "- 作成日: 2030-12-31\n")
}

func TestGenerate_DoesNotMutateAnswers(t *testing.T) {
	s := scenario()
	before := s.Clone()
	for _, kind := range document.Kinds() {
		_, err := newGenerator().Generate(kind, s, document.Options{Now: may1})
		require.NoError(t, err)
	}
	assert.Equal(t, before, s)
}
