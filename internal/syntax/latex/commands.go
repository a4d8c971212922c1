package latex

// ArgFlavour tags the curly-group flavour the parser gives to an absorbed
// argument, which the semantic extractor later relies on to recognise
// argument shapes without reparsing.
type ArgFlavour int

const (
	FlavourPlain ArgFlavour = iota
	FlavourWord
	FlavourWordList
	FlavourKeyValue
	FlavourCommandOnly
)

// ArgSpec describes one absorbed argument slot: whether it is a bracket
// (optional) or curly (required) group, and its flavour.
type ArgSpec struct {
	Bracket  bool
	Optional bool
	Flavour  ArgFlavour
}

// Signature is the argument-shape knowledge the parser consults to decide
// how many following groups a known command absorbs.
type Signature struct {
	Args []ArgSpec
}

// DefaultCommandTable returns the built-in argument-shape table for the
// known command families: cite family, label family, include family,
// color/graphics, sectioning, theorem/command declarations. Unknown
// commands absorb zero arguments.
func DefaultCommandTable() map[string]Signature {
	t := map[string]Signature{}

	word := Signature{Args: []ArgSpec{{Flavour: FlavourWord}}}
	wordList := Signature{Args: []ArgSpec{{Flavour: FlavourWordList}}}
	plain := Signature{Args: []ArgSpec{{Flavour: FlavourPlain}}}

	for _, c := range []string{"label"} {
		t[c] = word
	}
	for _, c := range []string{"ref", "eqref", "cref", "Cref", "autoref", "pageref", "vref", "nameref"} {
		t[c] = word
	}
	for _, c := range []string{"crefrange", "Crefrange"} {
		t[c] = Signature{Args: []ArgSpec{{Flavour: FlavourWord}, {Flavour: FlavourWord}}}
	}
	for _, c := range []string{
		"cite", "citet", "citep", "citeauthor", "citeyear", "citeyearpar",
		"Citet", "Citep", "fullcite", "footcite", "textcite", "parencite",
		"autocite", "smartcite", "supercite", "citetitle", "nocite",
	} {
		t[c] = wordList
	}
	for _, c := range []string{"begin", "end"} {
		t[c] = word
	}
	for _, c := range []string{"input", "include", "subfile"} {
		t[c] = plain
	}
	t["import"] = Signature{Args: []ArgSpec{{Flavour: FlavourPlain}, {Flavour: FlavourPlain}}}
	t["subimport"] = t["import"]
	for _, c := range []string{"addbibresource", "bibliography"} {
		t[c] = wordList
	}
	for _, c := range []string{"usepackage", "RequirePackage"} {
		t[c] = Signature{Args: []ArgSpec{
			{Bracket: true, Optional: true, Flavour: FlavourKeyValue},
			{Flavour: FlavourWordList},
		}}
	}
	for _, c := range []string{"documentclass", "LoadClass"} {
		t[c] = Signature{Args: []ArgSpec{
			{Bracket: true, Optional: true, Flavour: FlavourKeyValue},
			{Flavour: FlavourWordList},
		}}
	}
	t["newtheorem"] = Signature{Args: []ArgSpec{{Flavour: FlavourWord}, {Flavour: FlavourPlain}}}
	t["declaretheorem"] = Signature{Args: []ArgSpec{
		{Bracket: true, Optional: true, Flavour: FlavourKeyValue},
		{Flavour: FlavourWord},
	}}
	t["graphicspath"] = wordList
	t["DeclareMathOperator"] = Signature{Args: []ArgSpec{
		{Flavour: FlavourCommandOnly}, {Flavour: FlavourPlain},
	}}
	for _, c := range []string{"newcommand", "renewcommand", "providecommand", "DeclareRobustCommand"} {
		t[c] = Signature{Args: []ArgSpec{
			{Flavour: FlavourCommandOnly},
			{Bracket: true, Optional: true, Flavour: FlavourPlain},
			{Flavour: FlavourPlain},
		}}
	}
	t["newenvironment"] = Signature{Args: []ArgSpec{
		{Flavour: FlavourWord},
		{Bracket: true, Optional: true, Flavour: FlavourPlain},
		{Flavour: FlavourPlain},
		{Flavour: FlavourPlain},
	}}
	t["includegraphics"] = Signature{Args: []ArgSpec{
		{Bracket: true, Optional: true, Flavour: FlavourKeyValue},
		{Flavour: FlavourPlain},
	}}
	for _, c := range []string{"color", "textcolor", "pagecolor", "colorbox"} {
		t[c] = plain
	}
	for _, c := range []string{"section", "subsection", "subsubsection", "chapter", "part", "paragraph", "subparagraph"} {
		t[c] = Signature{Args: []ArgSpec{
			{Bracket: true, Optional: true, Flavour: FlavourPlain},
			{Flavour: FlavourPlain},
		}}
	}
	t["caption"] = Signature{Args: []ArgSpec{
		{Bracket: true, Optional: true, Flavour: FlavourPlain},
		{Flavour: FlavourPlain},
	}}
	t["item"] = Signature{Args: []ArgSpec{
		{Bracket: true, Optional: true, Flavour: FlavourPlain},
	}}
	return t
}

// SectionLevels maps each sectioning command to its nesting level, used by
// folding and document symbols to decide where a section's range ends.
var SectionLevels = map[string]int{
	"part":          0,
	"chapter":       1,
	"section":       2,
	"subsection":    3,
	"subsubsection": 4,
	"paragraph":     5,
	"subparagraph":  6,
}

// CommandDefinitionCommands names the commands whose first (CommandOnly)
// argument introduces a *definition* of that command name, rather than a
// use.
var CommandDefinitionCommands = map[string]bool{
	"DeclareMathOperator":  true,
	"newcommand":           true,
	"renewcommand":         true,
	"providecommand":       true,
	"DeclareRobustCommand": true,
}
