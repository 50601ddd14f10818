package document

import (
	"strings"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
)

// OnePager renders the one-page diagnosis summary: themes, the three best
// project types with their reasons, and the difficulty and risk verdicts.
func (g *Generator) OnePager(set answer.Set, opts Options) string {
	if v := answer.Validate(g.cat, set); !v.OK {
		return ErrorDocument(v.Errors)
	}

	ts := g.scorer.Types(set)
	diff := g.scorer.Difficulty(set)
	risk := g.scorer.Risk(set)

	var p page
	p.line("# 1枚サマリー（案件化診断）")
	p.linef("- 作成日: %s", g.date(opts))
	p.linef("- 主要テーマ: %s", g.labels(set, "Q3", " / "))
	p.linef("- 主要課題: **%s**", g.label(set, "Q4"))
	p.linef("- 期限: **%s**", g.label(set, "Q6"))
	p.blank()
	p.line("## 推奨案件タイプ（優先順）")
	for i, t := range ts.Top(3) {
		p.linef("%d. **%s** — %s", i+1, t, firstReasons(ts.Reasons[t], "（理由：回答から推定）"))
	}
	p.blank()
	p.line("## 難易度 / 炎上リスク")
	p.linef("- 難易度: **%s**（score=%d）", diff.Level, diff.Score)
	if len(diff.Reasons) > 0 {
		p.linef("  - 理由: %s", strings.Join(diff.Reasons, " / "))
	}
	p.linef("- 炎上リスク: **%s**（score=%d）", risk.Level, risk.Score)
	if len(risk.Reasons) > 0 {
		p.linef("  - 理由: %s", strings.Join(risk.Reasons, " / "))
	}
	p.blank()
	p.line("## 次の一手（最短）")
	p.line("- ① 前提整理（データ所在/抽出方法/権限/制約）を確定してSOW叩き台を固める")
	p.line("- ② 募集票で提案募集（3名程度）→ 15分×2回でスコープ確定→着手")
	return p.String()
}

// SOW renders the statement-of-work draft for the primary project type.
func (g *Generator) SOW(set answer.Set, opts Options) string {
	if v := answer.Validate(g.cat, set); !v.OK {
		return ErrorDocument(v.Errors)
	}

	ts := g.scorer.Types(set)
	primary := primaryType(ts, opts)

	kpis := g.labels(set, "Q5", " / ")
	if kpis == "" {
		kpis = "（未設定）"
	}

	var p page
	p.linef("# 案件定義書（SOW叩き台）: %s", primary)
	p.linef("- 作成日: %s", g.date(opts))
	p.linef("- 主要テーマ: %s", g.labels(set, "Q3", " / "))
	p.linef("- 主要課題: %s", g.label(set, "Q4"))
	p.blank()
	p.line("## 1. 背景・課題")
	p.line("- 現状の困りごと（具体例を1〜3個）：")
	p.line("  - （例）二重入力で毎日◯分/人かかる")
	p.blank()
	p.line("## 2. 目的・KPI・期限")
	p.linef("- KPI: %s", kpis)
	p.linef("- 期限: %s", g.label(set, "Q6"))
	p.blank()
	p.line("## 3. 対象範囲（やる/やらない）")
	p.line("- やること：")
	p.line("  - （例）対象業務のデータ収集・設計・実装・テスト・運用手順作成")
	p.line("- やらないこと：")
	p.line("  - （例）全社展開/他部門の追加要望は別途")
	p.blank()
	p.line("## 4. 現状フロー（As-Is）")
	p.line("- 主要ステップ（箇条書き）：")
	p.blank()
	p.line("## 5. データ一覧（所在/形式/更新/機微情報）")
	p.linef("- データ所在(Q13): %s", g.labels(set, "Q13", ", "))
	p.linef("- 取得容易性(Q14): %s", g.label(set, "Q14"))
	p.linef("- マスタ品質(Q15): %s", g.label(set, "Q15"))
	p.linef("- 機微情報(Q16): %s", g.label(set, "Q16"))
	p.linef("- 更新頻度(Q17): %s", g.label(set, "Q17"))
	p.blank()
	p.line("## 6. 連携対象・制約")
	p.linef("- 連携可否(Q20): %s", g.label(set, "Q20"))
	p.linef("- クラウド方針(Q18): %s", g.label(set, "Q18"))
	p.linef("- ネットワーク制約(Q19): %s", g.label(set, "Q19"))
	p.blank()
	p.line("## 7. 成果物（Deliverables）")
	p.linef("- 推奨根拠: %s", firstReasons(ts.Reasons[primary], "（回答から推定）"))
	p.line("- 詳細設計（項目定義/データマッピング/権限/運用）")
	p.line("- 実装物（連携/フォーム/ダッシュボード等）")
	p.line("- テスト観点と受入基準（Acceptance criteria）")
	p.line("- 運用手順書（定例/障害時/問い合わせ）")
	p.blank()
	p.line("## 8. フェーズ案")
	p.line("- 0. 事前調査（現場ヒアリング/データ確認）")
	p.line("- 1. 設計（要件/SOW確定・画面/連携/データ設計）")
	p.line("- 2. 実装（MVP）")
	p.line("- 3. テスト（受入/例外/負荷）")
	p.line("- 4. 運用開始（監視・改善サイクル）")
	p.blank()
	p.line("## 9. 体制・会議体")
	p.line("- 窓口担当: （氏名/役割）")
	p.linef("- 決裁者: %s", g.label(set, "Q23"))
	p.linef("- レビュー頻度: %s", g.label(set, "Q24"))
	p.blank()
	p.line("## 10. 前提条件（社内の宿題）")
	p.line("- データ提供（サンプル/本番）と抽出権限の付与")
	p.line("- マスタ/ルールの“正”を決める責任者の設定")
	p.line("- テスト協力（代表ユーザー2名以上）")
	return p.String()
}

// JobPost renders the recruiting post used to match the project with an
// external engineer.
func (g *Generator) JobPost(set answer.Set, opts Options) string {
	if v := answer.Validate(g.cat, set); !v.OK {
		return ErrorDocument(v.Errors)
	}

	primary := primaryType(g.scorer.Types(set), opts)
	diff := g.scorer.Difficulty(set)
	risk := g.scorer.Risk(set)
	deadline := g.label(set, "Q6")

	var p page
	p.linef("# 募集票（マッチング用）: %s", primary)
	p.linef("- 作成日: %s", g.date(opts))
	p.blank()
	p.line("## ミッション")
	p.linef("- 課題「%s」を改善し、期限「%s」までに成果物をリリースする", g.label(set, "Q4"), deadline)
	p.blank()
	p.line("## 難易度 / 炎上リスク")
	p.linef("- 難易度: %s / 炎上リスク: %s", diff.Level, risk.Level)
	p.blank()
	p.line("## スコープ（やること）")
	p.line("- 要件整理（現場ヒアリング/データ確認/スコープ確定）")
	p.line("- 設計（データ/連携/画面/権限/運用）")
	p.line("- 実装（MVP）＋テスト＋運用引継ぎ")
	p.blank()
	p.line("## スコープ外（やらないこと）")
	p.line("- 全社展開や他領域への横展開は別途合意後")
	p.blank()
	p.line("## 成果物")
	p.line("- 1枚サマリー / SOW確定版 / 実装物 / 手順書 / 受入基準")
	p.blank()
	p.line("## 制約・前提")
	p.linef("- クラウド方針: %s", g.label(set, "Q18"))
	p.linef("- ネットワーク: %s", g.label(set, "Q19"))
	p.linef("- 個人情報: %s", g.label(set, "Q16"))
	p.linef("- 連携可否: %s", g.label(set, "Q20"))
	p.blank()
	p.line("## 稼働・期間（仮）")
	p.linef("- 期間: %s（目安）", deadline)
	p.line("- MTG: 週1回 15〜30分")
	p.linef("- 予算感: %s", g.label(set, "Q25"))
	p.blank()
	p.line("## 必須スキル（例）")
	p.line("- 要件定義/業務理解、データ設計、実装・運用設計")
	p.line("## 歓迎スキル（例）")
	p.line("- iPaaS/RPA、BI、権限設計、セキュリティ対応、ドキュメンテーション")
	return p.String()
}
