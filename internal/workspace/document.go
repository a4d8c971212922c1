package workspace

import (
	"texlab-go/internal/semantic"
	"texlab-go/internal/syntax"
	"texlab-go/internal/syntax/bibtex"
	"texlab-go/internal/syntax/buildlog"
	"texlab-go/internal/syntax/latex"
)

// Owner records who last supplied a Document's text. A
// Distro-owned document never contributes diagnostics (invariant 6).
type Owner int

const (
	OwnerClient Owner = iota
	OwnerServer
	OwnerDistro
)

func (o Owner) String() string {
	switch o {
	case OwnerClient:
		return "client"
	case OwnerServer:
		return "server"
	case OwnerDistro:
		return "distro"
	default:
		return "unknown"
	}
}

// TexData holds the parsed artifacts of a TeX document.
type TexData struct {
	Green   *syntax.GreenNode
	Summary semantic.Summary
}

// BibData holds the parsed artifacts of a BibTeX document.
type BibData struct {
	Green *syntax.GreenNode
	Index semantic.BibIndex
}

// Document is the in-memory representation of one source file.
// Text is immutable once constructed; a change produces a brand new
// Document rather than mutating this one.
type Document struct {
	URI       string
	Text      string
	Lines     *LineIndex
	Language  Language
	Owner     Owner
	Directory string
	Version   int
	Cursor    *Position

	Tex *TexData
	Bib *BibData
	Log *buildlog.LogData
}

// ParseOptions bundles the configuration knobs the parsers/extractor need
// (sourced from config.SyntaxConfig by the caller).
type ParseOptions struct {
	VerbatimEnvironments []string
	Semantic             semantic.Config
}

// NewDocument parses text according to its language and returns a fully
// populated, immutable Document. Marker languages (Root/Tectonic/
// Latexmkrc) and unparsed languages simply carry no Tex/Bib/Log data.
func NewDocument(uri, text string, lang Language, owner Owner, version int, opts ParseOptions) *Document {
	doc := &Document{
		URI:       uri,
		Text:      text,
		Lines:     NewLineIndex(text),
		Language:  lang,
		Owner:     owner,
		Directory: DirOfURI(uri),
		Version:   version,
	}
	switch lang {
	case LanguageTex:
		green := latex.Parse(text, latex.Options{VerbatimEnvironments: opts.VerbatimEnvironments})
		doc.Tex = &TexData{
			Green:   green,
			Summary: semantic.ExtractTex(green, opts.Semantic, StemOfURI(uri)),
		}
	case LanguageBib:
		green := bibtex.Parse(text)
		doc.Bib = &BibData{Green: green, Index: semantic.ExtractBib(green)}
	case LanguageLog:
		ld := buildlog.Parse(text)
		doc.Log = &ld
	}
	return doc
}

// WithCursor returns a shallow copy of the document with Cursor updated;
// used by queries that need a caret position absent an explicit one.
func (d *Document) WithCursor(pos Position) *Document {
	cp := *d
	p := pos
	cp.Cursor = &p
	return &cp
}
