package external

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"texlab-go/internal/diagnostics"
	"texlab-go/internal/logging"
	"texlab-go/internal/workspace"
)

// utf8BOM is stripped from the source before it is piped to chktex.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RunChktex feeds the document text to chktex over stdin and parses the
// resulting diagnostics via diagnostics.ParseChktex. The document is
// never written to a temp file.
func RunChktex(ctx context.Context, text string, workDir string, additionalArgs []string, lines *workspace.LineIndex) ([]diagnostics.Diagnostic, error) {
	args := []string{"-I0", `-f%l:%c:%d:%k:%n:%m\n`}
	args = append(args, additionalArgs...)

	cmd := exec.CommandContext(ctx, "chktex", args...)
	cmd.Dir = workDir
	cmd.Stdin = bytes.NewReader(bytes.TrimPrefix([]byte(text), utf8BOM))
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// chktex exits nonzero when it reports warnings; only a spawn
		// failure is an error for the caller.
		if _, isExit := err.(*exec.ExitError); !isExit {
			return nil, fmt.Errorf("external: chktex: %w", err)
		}
	}
	diags := diagnostics.ParseChktex(stdout.String(), lines)
	logging.Get(logging.CategoryChktex).Debug("chktex produced %d diagnostics", len(diags))
	return diags, nil
}
