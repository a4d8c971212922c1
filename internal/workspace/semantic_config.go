package workspace

import (
	"texlab-go/internal/config"
	"texlab-go/internal/semantic"
)

// semanticConfigFrom adapts the process-wide Config's syntax tables into
// the narrow semantic.Config the extractor consults.
func semanticConfigFrom(cfg *config.Config) semantic.Config {
	return semantic.NewConfig(
		cfg.Syntax.LabelDefinitionCommands,
		cfg.Syntax.LabelReferenceCommands,
		cfg.Syntax.LabelReferenceRangeCommands,
		cfg.Syntax.CitationCommands,
	)
}
