// Package document renders the three Markdown deliverables of a diagnosis:
// the one-page summary, the statement-of-work draft and the matching job
// post. Rendering is deterministic for a fixed answer set, primary type and
// date.
package document

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

var (
	// ErrUnknownKind is returned for a document kind other than the three
	// known ones.
	ErrUnknownKind = errors.New("document: unknown kind")
	// ErrUnknownType is returned when a primary type override is not one of
	// the eight project types.
	ErrUnknownType = errors.New("document: unknown project type")
)

// ─── KINDS ────────────────────────────────────────────────────────────────────

// Kind identifies one of the generated documents.
type Kind string

const (
	KindOnePager Kind = "onepager"
	KindSOW      Kind = "sow"
	KindJobPost  Kind = "job_post"
)

// Kinds returns every document kind in download order.
func Kinds() []Kind { return []Kind{KindOnePager, KindSOW, KindJobPost} }

// Filename is the download name of the document.
func (k Kind) Filename() string { return string(k) + ".md" }

// ParseKind validates s as a document kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseType validates s as a primary type override. An empty string means
// "no override" and is accepted.
func ParseType(s string) (scoring.TypeName, error) {
	if s == "" {
		return "", nil
	}
	t, ok := scoring.ParseType(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// ─── GENERATOR ────────────────────────────────────────────────────────────────

// Options tunes a single rendering.
type Options struct {
	// Primary overrides the top-ranked type in the SOW and job post titles.
	Primary scoring.TypeName
	// Now stamps the creation date. The zero value means the generator clock.
	Now time.Time
}

// Generator renders documents from a catalogue and a scorer. It holds no
// mutable state and is safe for concurrent use.
type Generator struct {
	cat    *catalog.Catalog
	scorer *scoring.Scorer
	clock  func() time.Time
}

// NewGenerator returns a Generator that stamps documents with the local
// wall clock unless Options.Now is set.
func NewGenerator(cat *catalog.Catalog, scorer *scoring.Scorer) *Generator {
	return &Generator{cat: cat, scorer: scorer, clock: time.Now}
}

// WithClock returns a copy of g that uses clock for undated renderings.
func (g *Generator) WithClock(clock func() time.Time) *Generator {
	cp := *g
	cp.clock = clock
	return &cp
}

// Generate renders the document of the given kind. Invalid answers are not an
// error: they produce the input-error document. Only an unknown kind or an
// unknown primary type fails.
func (g *Generator) Generate(kind Kind, set answer.Set, opts Options) (string, error) {
	if opts.Primary != "" {
		if _, ok := scoring.ParseType(string(opts.Primary)); !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownType, opts.Primary)
		}
	}
	switch kind {
	case KindOnePager:
		return g.OnePager(set, opts), nil
	case KindSOW:
		return g.SOW(set, opts), nil
	case KindJobPost:
		return g.JobPost(set, opts), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ErrorDocument is what every generator returns for an invalid answer set.
func ErrorDocument(errs []string) string {
	items := make([]string, len(errs))
	for i, e := range errs {
		items[i] = "- " + e
	}
	return "# 入力エラー\n\n" + strings.Join(items, "\n")
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

// date renders the creation stamp as YYYY-MM-DD in the location of the time.
func (g *Generator) date(opts Options) string {
	now := opts.Now
	if now.IsZero() {
		now = g.clock()
	}
	return now.Format(time.DateOnly)
}

// label is the option label of a single-select answer.
func (g *Generator) label(set answer.Set, qid string) string {
	return g.cat.Label(qid, set.Get(qid).Scalar())
}

// labels joins the option labels of every selected key.
func (g *Generator) labels(set answer.Set, qid, sep string) string {
	keys := set.Get(qid).Keys
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = g.cat.Label(qid, k)
	}
	return strings.Join(out, sep)
}

// primaryType is the override when set, otherwise the top-ranked type.
func primaryType(ts scoring.TypeScores, opts Options) scoring.TypeName {
	if opts.Primary != "" {
		return opts.Primary
	}
	return ts.Top(1)[0]
}

// firstReasons joins up to two reasons with "; ", or returns fallback.
func firstReasons(reasons []string, fallback string) string {
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	if s := strings.Join(reasons, "; "); s != "" {
		return s
	}
	return fallback
}

// page accumulates document lines. Lines are joined with "\n" and the result
// has no trailing newline.
type page struct {
	lines []string
}

func (p *page) line(s string) { p.lines = append(p.lines, s) }

func (p *page) linef(format string, args ...any) {
	p.lines = append(p.lines, fmt.Sprintf(format, args...))
}

func (p *page) blank() { p.lines = append(p.lines, "") }

func (p *page) String() string { return strings.Join(p.lines, "\n") }
