package catalog

// defaultCatalog is built once at package init. Construction failure is a
// programming error in the literals below, so it panics.
var defaultCatalog = mustNew(defaultQuestions(), defaultSteps())

// Default returns the built-in 25-question catalogue. The returned value is
// shared and must be treated as read-only.
func Default() *Catalog { return defaultCatalog }

func mustNew(qs []Question, steps []Step) *Catalog {
	c, err := New(qs, steps)
	if err != nil {
		panic(err)
	}
	return c
}

func opts(pairs ...string) []Option {
	out := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Option{Key: pairs[i], Label: pairs[i+1]})
	}
	return out
}

func defaultSteps() []Step {
	return []Step{
		{Title: "基本情報", QuestionIDs: []string{"Q1", "Q2", "Q3"}},
		{Title: "目的・成功条件", QuestionIDs: []string{"Q4", "Q5", "Q6", "Q7"}},
		{Title: "業務の実態", QuestionIDs: []string{"Q8", "Q9", "Q10", "Q11", "Q12"}},
		{Title: "データの状態", QuestionIDs: []string{"Q13", "Q14", "Q15", "Q16", "Q17"}},
		{Title: "IT制約・運用", QuestionIDs: []string{"Q18", "Q19", "Q20", "Q21", "Q22"}},
		{Title: "推進力", QuestionIDs: []string{"Q23", "Q24", "Q25"}},
	}
}

func defaultQuestions() []Question {
	return []Question{
		// ── 基本情報 ──────────────────────────────────────────────────────────
		{ID: "Q1", Text: "業種（近いもの）", Options: opts(
			"A", "製造", "B", "卸・小売", "C", "サービス",
			"D", "建設・不動産", "E", "医療・介護", "F", "その他",
		)},
		{ID: "Q2", Text: "従業員規模", Options: opts(
			"A", "〜20", "B", "21〜50", "C", "51〜100", "D", "101〜300", "E", "301〜",
		)},
		{
			ID: "Q3", Text: "相談テーマ（複数可・最大2つ）", Multi: true, MaxSelections: 2,
			Help: "最も困っている領域を2つまで選んでください。",
			Options: opts(
				"A", "バックオフィス（経理・人事・総務）",
				"B", "フロント（営業・顧客対応・受発注）",
				"C", "現場（現業/物流/店舗等）",
				"D", "情報共有（文書・ナレッジ・問い合わせ）",
				"E", "データ活用（可視化・分析・予測）",
			),
		},

		// ── 目的・成功条件 ────────────────────────────────────────────────────
		{ID: "Q4", Text: "いちばん困っていることは？（1つ）", Options: opts(
			"A", "工数が多い", "B", "ミスが多い", "C", "リードタイムが長い",
			"D", "属人化", "E", "数字が合わない・見えない",
		)},
		{ID: "Q5", Text: "成功したと判断するKPIは？（最大2つ）", Multi: true, MaxSelections: 2, Options: opts(
			"A", "工数削減", "B", "ミス削減", "C", "締め短縮", "D", "取りこぼし削減", "E", "その他",
		)},
		{ID: "Q6", Text: "期限（いつまでに）", Options: opts(
			"A", "〜1ヶ月", "B", "〜3ヶ月", "C", "〜6ヶ月", "D", "6ヶ月〜", "E", "未定",
		)},
		{ID: "Q7", Text: "影響範囲（関係部署数）", Options: opts(
			"A", "1部署", "B", "2部署", "C", "3〜4部署", "D", "5部署〜",
		)},

		// ── 業務の実態 ────────────────────────────────────────────────────────
		{ID: "Q8", Text: "対象業務の処理件数（月あたり概算）", Options: opts(
			"A", "〜100", "B", "101〜500", "C", "501〜2000", "D", "2001〜",
		)},
		{ID: "Q9", Text: "例外対応の多さ", Options: opts(
			"A", "ほぼ定型", "B", "たまに例外", "C", "例外が多い", "D", "例外が主流（ルール未整理）",
		)},
		{ID: "Q10", Text: "現状の主な運用", Options: opts(
			"A", "紙中心", "B", "Excel中心", "C", "SaaS中心", "D", "基幹中心", "E", "混在",
		)},
		{ID: "Q11", Text: "二重入力はありますか？", Options: opts(
			"A", "なし", "B", "たまに", "C", "日常的", "D", "ほぼ全工程",
		)},
		{ID: "Q12", Text: "既存の手順書・ルールは？", Options: opts(
			"A", "あり&守られている", "B", "あるが古い/守られていない",
			"C", "口頭・属人", "D", "担当者ごとに違う",
		)},

		// ── データの状態 ──────────────────────────────────────────────────────
		{ID: "Q13", Text: "データはどこにありますか？（複数可）", Multi: true, MaxSelections: 3, Options: opts(
			"A", "Excel/CSV（共有フォルダ）", "B", "SaaS（Salesforce等）",
			"C", "基幹（会計/在庫/生産等）", "D", "個人PC", "E", "紙/PDFスキャン",
		)},
		{ID: "Q14", Text: "データの取り出しやすさ", Options: opts(
			"A", "誰でも出せる", "B", "一部の人だけ", "C", "ベンダー依頼が必要", "D", "ほぼ出せない",
		)},
		{ID: "Q15", Text: "マスタ品質（表記揺れ/重複）", Options: opts(
			"A", "きれい", "B", "少し揺れ", "C", "揺れ・重複が多い", "D", "マスタがない/信用できない",
		)},
		{ID: "Q16", Text: "個人情報・機微情報の有無", Options: opts(
			"A", "なし", "B", "少し", "C", "あり", "D", "かなりある",
		)},
		{ID: "Q17", Text: "データ更新頻度", Options: opts(
			"A", "月次", "B", "週次", "C", "日次", "D", "リアルタイムに近い",
		)},

		// ── IT制約・運用 ──────────────────────────────────────────────────────
		{ID: "Q18", Text: "クラウド利用の方針", Options: opts(
			"A", "何でもOK", "B", "条件付きOK", "C", "原則NG", "D", "分からない（方針がない）",
		)},
		{ID: "Q19", Text: "社内ネットワーク制約", Options: opts(
			"A", "制約少", "B", "VPN必須", "C", "社内LAN限定", "D", "端末制限・持ち出し不可が強い",
		)},
		{ID: "Q20", Text: "既存システムの連携可否（API/CSV等）", Options: opts(
			"A", "APIあり", "B", "CSVならOK", "C", "手作業しかない", "D", "不明",
		)},
		{ID: "Q21", Text: "セキュリティ・権限管理", Options: opts(
			"A", "役割ごとに権限設計済み", "B", "一部できている",
			"C", "共有アカウント/ゆるい", "D", "何も決まってない",
		)},
		{ID: "Q22", Text: "運用体制（保守/障害対応）", Options: opts(
			"A", "担当がいて運用できる", "B", "担当はいるが忙しい",
			"C", "兼務で難しい", "D", "いない（外部前提）",
		)},

		// ── 推進力 ────────────────────────────────────────────────────────────
		{ID: "Q23", Text: "決裁者（GOを出せる人）は誰？", Options: opts(
			"A", "経営者", "B", "部門長", "C", "担当者", "D", "不明",
		)},
		{ID: "Q24", Text: "週次レビュー時間を確保できる？", Options: opts(
			"A", "30分以上", "B", "15分程度", "C", "ほぼ無理", "D", "不明",
		)},
		{ID: "Q25", Text: "予算感（ざっくり）", Options: opts(
			"A", "〜30万", "B", "〜100万", "C", "〜300万", "D", "300万〜", "E", "未定",
		)},
	}
}
