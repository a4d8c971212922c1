package query

import (
	"sort"
	"strings"

	"texlab-go/internal/components"
	"texlab-go/internal/config"
	"texlab-go/internal/distro"
	"texlab-go/internal/project"
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/workspace"
)

// CompletionKind tells the transport what family a candidate belongs to
// and bounds how many candidates are returned for it.
type CompletionKind int

const (
	CompleteCommand CompletionKind = iota
	CompleteEnvironment
	CompleteLabel
	CompleteCitation
	CompleteIncludePath
	CompleteEntryType
)

// limitFor bounds the result list per completion kind.
func limitFor(kind CompletionKind) int {
	switch kind {
	case CompleteCommand:
		return 100
	default:
		return 50
	}
}

// CompletionItem is one scored candidate. Range is the prefix being
// completed — the text the editor replaces on accept; when no prefix
// token is present it is the empty range at the cursor.
type CompletionItem struct {
	Label  string
	Detail string
	Kind   CompletionKind
	Score  int
	Range  syntax.Range
}

// bibEntryTypes is the closed list offered after `@` in a BibTeX document.
var bibEntryTypes = []string{
	"article", "book", "booklet", "conference", "inbook", "incollection",
	"inproceedings", "manual", "mastersthesis", "misc", "phdthesis",
	"proceedings", "techreport", "unpublished", "string", "preamble", "comment",
}

// Complete detects the completion kind from the cursor context, enumerates
// candidates from the project and the packaged component database, scores
// them with the fuzzy matcher, and returns the sorted, truncated result.
// The distro file database is not enumerated.
//
// An unknown position yields an empty list, never an error.
func Complete(proj *project.Project, doc *workspace.Document, offset int, comp *components.Database, dist distro.Resolver, cfg *config.Config) []CompletionItem {
	if comp == nil {
		comp = components.Empty()
	}
	if doc.Bib != nil {
		return completeBib(doc, offset)
	}
	if doc.Tex == nil {
		return nil
	}

	ctx := TexContext(doc.Tex.Green, offset)
	if ctx.Token == nil {
		return nil
	}

	kind, prefix, rng, ok := detectTexCompletion(ctx, cfg)
	if !ok {
		return nil
	}

	var candidates []CompletionItem
	switch kind {
	case CompleteCommand:
		candidates = commandCandidates(proj, comp)
	case CompleteEnvironment:
		candidates = environmentCandidates(proj, comp)
	case CompleteLabel:
		candidates = labelCandidates(proj, cfg)
	case CompleteCitation:
		candidates = citationCandidates(proj)
	case CompleteIncludePath:
		candidates = includePathCandidates(proj, dist)
	}
	return rank(candidates, kind, prefix, rng)
}

// detectTexCompletion classifies the cursor position inside a Tex
// document.
func detectTexCompletion(ctx Context, cfg *config.Config) (CompletionKind, string, syntax.Range, bool) {
	tok := ctx.Token

	// Cursor on (or right after) a command name: completing the command
	// itself. The replaced prefix excludes the backslash.
	if tok.Kind() == syntax.KindCommandName {
		text := tok.Text()
		prefix := strings.TrimPrefix(text[:ctx.Offset-tok.Range().Start], `\`)
		return CompleteCommand, prefix, syntax.Range{Start: tok.Range().Start + 1, End: tok.Range().End}, true
	}

	// \begin{...} and \end{...} parse as BeginEnvironment/EndEnvironment
	// nodes rather than Commands, so they are looked up alongside Command.
	name := CommandName(syntax.FindAncestor(ctx.Token, syntax.KindCommand, syntax.KindBeginEnvironment, syntax.KindEndEnvironment))
	if name == "" {
		return 0, "", syntax.Range{}, false
	}

	prefix, rng := wordPrefixAt(ctx)
	switch {
	case name == "begin" || name == "end":
		return CompleteEnvironment, prefix, rng, true
	case inSet(cfg.Syntax.LabelReferenceCommands, name) || inSet(cfg.Syntax.LabelReferenceRangeCommands, name) || inSet(cfg.Syntax.LabelDefinitionCommands, name):
		return CompleteLabel, prefix, rng, true
	case inSet(cfg.Syntax.CitationCommands, name):
		return CompleteCitation, prefix, rng, true
	case name == "input" || name == "include" || name == "subfile" ||
		name == "addbibresource" || name == "bibliography" ||
		name == "includegraphics":
		return CompleteIncludePath, prefix, rng, true
	}
	return 0, "", syntax.Range{}, false
}

func inSet(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// wordPrefixAt returns the word text before the cursor inside the current
// token, and the range the accepted candidate replaces. A cursor not on a
// word token yields an empty prefix with an empty range at the cursor.
func wordPrefixAt(ctx Context) (string, syntax.Range) {
	tok := ctx.Token
	if tok != nil && tok.Kind() == syntax.KindWord && tok.Range().Contains(ctx.Offset) {
		return tok.Text()[:ctx.Offset-tok.Range().Start], tok.Range()
	}
	return "", syntax.Range{Start: ctx.Offset, End: ctx.Offset}
}

func commandCandidates(proj *project.Project, comp *components.Database) []CompletionItem {
	seen := map[string]bool{}
	var out []CompletionItem
	add := func(name, detail string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, CompletionItem{Label: name, Detail: detail, Kind: CompleteCommand})
	}

	linked := linkedComponentFiles(proj)
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		for name := range doc.Tex.Summary.CommandDefinitions {
			add(name, "user-defined")
		}
	}
	for i := range comp.Components {
		c := &comp.Components[i]
		if !componentApplies(c, linked) {
			continue
		}
		detail := "built-in"
		if len(c.FileNames) > 0 {
			detail = c.FileNames[0]
		}
		for _, cmd := range c.Commands {
			add(cmd.Name, detail)
		}
	}
	return out
}

func environmentCandidates(proj *project.Project, comp *components.Database) []CompletionItem {
	seen := map[string]bool{}
	var out []CompletionItem
	add := func(name, detail string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, CompletionItem{Label: name, Detail: detail, Kind: CompleteEnvironment})
	}

	linked := linkedComponentFiles(proj)
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		for name := range doc.Tex.Summary.Environments {
			add(name, "used in project")
		}
		for _, th := range doc.Tex.Summary.TheoremEnvironments {
			add(th.Name, th.Description)
		}
	}
	for i := range comp.Components {
		c := &comp.Components[i]
		if !componentApplies(c, linked) {
			continue
		}
		detail := "built-in"
		if len(c.FileNames) > 0 {
			detail = c.FileNames[0]
		}
		for _, env := range c.Environments {
			add(env, detail)
		}
	}
	return out
}

// linkedComponentFiles collects every package/class file name the project
// explicitly loads, so component candidates are restricted to included
// packages plus the kernel.
func linkedComponentFiles(proj *project.Project) map[string]bool {
	linked := map[string]bool{}
	for _, doc := range proj.Documents {
		if doc.Tex == nil {
			continue
		}
		for _, link := range doc.Tex.Summary.Links {
			switch link.Kind {
			case semantic.LinkPackage:
				linked[link.Stem+".sty"] = true
			case semantic.LinkClass:
				linked[link.Stem+".cls"] = true
			}
		}
	}
	return linked
}

// componentApplies reports whether a component's symbols should be offered:
// the kernel (no file names) always applies, otherwise at least one of its
// file names must be loaded by the project.
func componentApplies(c *components.Component, linked map[string]bool) bool {
	if len(c.FileNames) == 0 {
		return true
	}
	for _, fn := range c.FileNames {
		if linked[fn] {
			return true
		}
	}
	return false
}

func labelCandidates(proj *project.Project, cfg *config.Config) []CompletionItem {
	seen := map[string]bool{}
	var out []CompletionItem
	for _, obj := range CollectObjects(proj) {
		if obj.Category != ObjectLabel || obj.Kind != ObjectDefinition || seen[obj.Name] {
			continue
		}
		seen[obj.Name] = true
		detail := ""
		if r, ok := RenderLabel(proj, obj.Name, cfg); ok {
			detail = r.String()
		}
		out = append(out, CompletionItem{Label: obj.Name, Detail: detail, Kind: CompleteLabel})
	}
	return out
}

func citationCandidates(proj *project.Project) []CompletionItem {
	var out []CompletionItem
	for _, doc := range proj.Documents {
		if doc.Bib == nil {
			continue
		}
		for _, e := range doc.Bib.Index.Entries {
			if e.Key.Text == "" {
				continue
			}
			out = append(out, CompletionItem{
				Label:  e.Key.Text,
				Detail: BibEntryPreview(e, doc.Text),
				Kind:   CompleteCitation,
			})
		}
	}
	return out
}

func includePathCandidates(proj *project.Project, dist distro.Resolver) []CompletionItem {
	seen := map[string]bool{}
	var out []CompletionItem
	for _, doc := range proj.Documents {
		stem := workspace.StemOfURI(doc.URI)
		if stem == "" || seen[stem] {
			continue
		}
		seen[stem] = true
		out = append(out, CompletionItem{Label: stem, Detail: doc.Language.String(), Kind: CompleteIncludePath})
	}
	// Only the stems of the project's own documents are offered. The
	// distro file database is not consulted here or anywhere later:
	// Resolver exposes point lookups rather than enumeration.
	_ = dist
	return out
}

func completeBib(doc *workspace.Document, offset int) []CompletionItem {
	ctx := BibContext(doc.Bib.Green, offset)
	if ctx.Token == nil {
		return nil
	}
	if ctx.BibPosition == BibPositionEntryType || ctx.Token.Kind() == syntax.KindBibCommand || ctx.Token.Kind() == syntax.KindAt {
		prefix := ""
		rng := syntax.Range{Start: offset, End: offset}
		if ctx.Token.Kind() == syntax.KindBibCommand {
			text := strings.TrimPrefix(ctx.Token.Text(), "@")
			n := offset - ctx.Token.Range().Start - 1
			if n < 0 {
				n = 0
			} else if n > len(text) {
				n = len(text)
			}
			prefix = text[:n]
			rng = syntax.Range{Start: ctx.Token.Range().Start + 1, End: ctx.Token.Range().End}
		}
		var candidates []CompletionItem
		for _, t := range bibEntryTypes {
			candidates = append(candidates, CompletionItem{Label: t, Kind: CompleteEntryType})
		}
		return rank(candidates, CompleteEntryType, prefix, rng)
	}
	return nil
}

// rank scores, filters, sorts and truncates candidates: score
// descending, label ascending for stability.
func rank(candidates []CompletionItem, kind CompletionKind, prefix string, rng syntax.Range) []CompletionItem {
	var out []CompletionItem
	for _, c := range candidates {
		score, ok := Match(prefix, c.Label)
		if !ok {
			continue
		}
		c.Score = score
		c.Range = rng
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	if limit := limitFor(kind); len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BibEntryPreview renders a short "author, title (year)" style preview
// for a BibTeX entry from its raw field value ranges; also used by hover
// over citations.
func BibEntryPreview(e semantic.BibEntry, text string) string {
	field := func(name string) string {
		for _, f := range e.Fields {
			if strings.EqualFold(f.Name, name) {
				return cleanFieldValue(fieldValueText(f, text))
			}
		}
		return ""
	}
	var parts []string
	if author := field("author"); author != "" {
		parts = append(parts, author)
	}
	if title := field("title"); title != "" {
		parts = append(parts, title)
	}
	out := strings.Join(parts, ", ")
	if year := field("year"); year != "" {
		out += " (" + year + ")"
	}
	return strings.TrimSpace(out)
}

func fieldValueText(f semantic.BibField, text string) string {
	r := f.ValueRange
	if r.Start < 0 || r.End > len(text) || r.Start >= r.End {
		return ""
	}
	return text[r.Start:r.End]
}

// cleanFieldValue strips delimiter braces/quotes and collapses runs of
// whitespace to single spaces.
func cleanFieldValue(v string) string {
	v = strings.Trim(v, `{}"`)
	return strings.Join(strings.Fields(v), " ")
}
