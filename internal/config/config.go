// Package config defines the strongly typed, process-wide configuration
// tree: root/aux/log/pdf directories, build and synctex invocation,
// diagnostic filtering, ChkTeX/formatter options, and the configurable
// syntax command/environment tables, loaded from YAML with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"texlab-go/internal/logging"
)

// BibtexFormatter selects the BibTeX pretty-printer.
type BibtexFormatter string

const (
	BibtexFormatterNone        BibtexFormatter = "None"
	BibtexFormatterInternal    BibtexFormatter = "Internal"
	BibtexFormatterLatexindent BibtexFormatter = "Latexindent"
)

// LatexFormatter selects the TeX pretty-printer.
type LatexFormatter string

const (
	LatexFormatterNone        LatexFormatter = "None"
	LatexFormatterLatexindent LatexFormatter = "Latexindent"
)

// BuildConfig configures the external build command.
type BuildConfig struct {
	Executable      string   `yaml:"executable"`
	Args            []string `yaml:"args"`
	OnSave          bool     `yaml:"on_save"`
	OutputDirectory string   `yaml:"output_directory"`
	OutputFilename  string   `yaml:"output_filename"`
}

// SynctexConfig configures the forward-search command.
type SynctexConfig struct {
	Executable string   `yaml:"executable"`
	Args       []string `yaml:"args"`
}

// DiagnosticsConfig holds the allowed/ignored regex pattern lists.
type DiagnosticsConfig struct {
	AllowedPatterns []string `yaml:"allowed_patterns"`
	IgnoredPatterns []string `yaml:"ignored_patterns"`
}

// CompiledPatterns lazily compiles the configured regex lists; invalid
// patterns are dropped with a warning rather than failing the whole config.
func (d DiagnosticsConfig) CompiledPatterns() (allowed, ignored []*regexp.Regexp) {
	compile := func(patterns []string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				logging.Get(logging.CategoryConfig).Warn("ignoring invalid diagnostics pattern %q: %v", p, err)
				continue
			}
			out = append(out, re)
		}
		return out
	}
	return compile(d.AllowedPatterns), compile(d.IgnoredPatterns)
}

// ChktexConfig configures ChkTeX invocation. OnOpenAndSave/OnEdit use
// explicit-presence tracking so that an absent key in the YAML file can be
// told apart from an explicit `false`, via an alias struct with pointer
// fields.
type ChktexConfig struct {
	OnOpenAndSave  bool
	OnEdit         bool
	AdditionalArgs []string

	onOpenAndSaveSet bool
	onEditSet        bool
}

type chktexConfigAlias struct {
	OnOpenAndSave  *bool    `yaml:"on_open_and_save"`
	OnEdit         *bool    `yaml:"on_edit"`
	AdditionalArgs []string `yaml:"additional_args"`
}

// UnmarshalYAML tracks which boolean fields were explicitly present.
func (c *ChktexConfig) UnmarshalYAML(value *yaml.Node) error {
	var alias chktexConfigAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	c.AdditionalArgs = alias.AdditionalArgs
	if alias.OnOpenAndSave != nil {
		c.OnOpenAndSave = *alias.OnOpenAndSave
		c.onOpenAndSaveSet = true
	}
	if alias.OnEdit != nil {
		c.OnEdit = *alias.OnEdit
		c.onEditSet = true
	}
	return nil
}

// OnOpenAndSaveExplicit reports whether on_open_and_save was present in the
// loaded document.
func (c ChktexConfig) OnOpenAndSaveExplicit() bool { return c.onOpenAndSaveSet }

// OnEditExplicit reports whether on_edit was present in the loaded document.
func (c ChktexConfig) OnEditExplicit() bool { return c.onEditSet }

// SyntaxConfig holds the configurable command/environment tables consulted
// by the parser and semantic extractor.
type SyntaxConfig struct {
	MathEnvironments            []string          `yaml:"math_environments"`
	EnumEnvironments            []string          `yaml:"enum_environments"`
	VerbatimEnvironments        []string          `yaml:"verbatim_environments"`
	CitationCommands            []string          `yaml:"citation_commands"`
	LabelDefinitionCommands     []string          `yaml:"label_definition_commands"`
	LabelReferenceCommands      []string          `yaml:"label_reference_commands"`
	LabelReferenceRangeCommands []string          `yaml:"label_reference_range_commands"`
	LabelDefinitionPrefixes     map[string]string `yaml:"label_definition_prefixes"`
	LabelReferencePrefixes      map[string]string `yaml:"label_reference_prefixes"`
}

// LoggingConfig configures the ambient file-logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
}

// Config is the full process-wide configuration tree.
type Config struct {
	RootDirectory string `yaml:"root_directory"`
	AuxDirectory  string `yaml:"aux_directory"`
	PdfDirectory  string `yaml:"pdf_directory"`
	LogDirectory  string `yaml:"log_directory"`

	Build   BuildConfig       `yaml:"build"`
	Synctex SynctexConfig     `yaml:"synctex"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Chktex  ChktexConfig      `yaml:"chktex"`

	FormatterLineLength int             `yaml:"formatter_line_length"`
	BibtexFormatter     BibtexFormatter `yaml:"bibtex_formatter"`
	LatexFormatter      LatexFormatter  `yaml:"latex_formatter"`

	Syntax  SyntaxConfig  `yaml:"syntax"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is present.
// Build defaults follow latexmk's conventional invocation rather than
// empty values.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Executable: "latexmk",
			Args:       []string{"-pdf", "-interaction=nonstopmode", "-synctex=1"},
		},
		Synctex: SynctexConfig{
			Executable: "",
			Args:       nil,
		},
		Diagnostics: DiagnosticsConfig{},
		Chktex: ChktexConfig{
			OnOpenAndSave: true,
			OnEdit:        false,
		},
		FormatterLineLength: 80,
		BibtexFormatter:     BibtexFormatterInternal,
		LatexFormatter:      LatexFormatterNone,
		Syntax: SyntaxConfig{
			MathEnvironments:     []string{"math", "displaymath", "equation", "equation*", "align", "align*", "gather", "gather*", "multline", "multline*"},
			EnumEnvironments:     []string{"enumerate", "itemize", "description"},
			VerbatimEnvironments: []string{"verbatim", "verbatim*", "lstlisting", "minted", "Verbatim"},
			CitationCommands: []string{
				"cite", "citet", "citep", "citeauthor", "citeyear", "citeyearpar",
				"Citet", "Citep", "fullcite", "footcite", "textcite", "parencite",
				"autocite", "smartcite", "supercite", "citetitle", "nocite",
			},
			LabelDefinitionCommands:     []string{"label"},
			LabelReferenceCommands:     []string{"ref", "eqref", "cref", "Cref", "autoref", "pageref", "vref", "nameref"},
			LabelReferenceRangeCommands: []string{"crefrange", "Crefrange"},
			LabelDefinitionPrefixes:     map[string]string{},
			LabelReferencePrefixes:      map[string]string{},
		},
		Logging: LoggingConfig{
			DebugMode:  false,
			Categories: map[string]bool{},
		},
	}
}

// Clone returns a copy of the configuration that can be overlaid with new
// values (e.g. a workspace/didChangeConfiguration push) without mutating
// the currently installed one, which readers may still hold.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Build.Args = append([]string(nil), c.Build.Args...)
	cp.Synctex.Args = append([]string(nil), c.Synctex.Args...)
	cp.Diagnostics.AllowedPatterns = append([]string(nil), c.Diagnostics.AllowedPatterns...)
	cp.Diagnostics.IgnoredPatterns = append([]string(nil), c.Diagnostics.IgnoredPatterns...)
	cp.Chktex.AdditionalArgs = append([]string(nil), c.Chktex.AdditionalArgs...)
	cp.Syntax.MathEnvironments = append([]string(nil), c.Syntax.MathEnvironments...)
	cp.Syntax.EnumEnvironments = append([]string(nil), c.Syntax.EnumEnvironments...)
	cp.Syntax.VerbatimEnvironments = append([]string(nil), c.Syntax.VerbatimEnvironments...)
	cp.Syntax.CitationCommands = append([]string(nil), c.Syntax.CitationCommands...)
	cp.Syntax.LabelDefinitionCommands = append([]string(nil), c.Syntax.LabelDefinitionCommands...)
	cp.Syntax.LabelReferenceCommands = append([]string(nil), c.Syntax.LabelReferenceCommands...)
	cp.Syntax.LabelReferenceRangeCommands = append([]string(nil), c.Syntax.LabelReferenceRangeCommands...)
	cp.Syntax.LabelDefinitionPrefixes = copyStringMap(c.Syntax.LabelDefinitionPrefixes)
	cp.Syntax.LabelReferencePrefixes = copyStringMap(c.Syntax.LabelReferencePrefixes)
	cp.Logging.Categories = copyBoolMap(c.Logging.Categories)
	return &cp
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Load reads a YAML configuration file and overlays it onto DefaultConfig.
// A missing file is not an error: it simply yields the defaults. A
// malformed file is reported to the caller, which should log a
// warning and keep the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
