package external

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"texlab-go/internal/config"
)

// FormatWithLatexindent writes text to a scratch file inside a temporary
// directory, runs latexindent over it, and returns the formatted result.
// The engine never writes to the user's source files; the temp
// directory is removed afterwards.
func FormatWithLatexindent(ctx context.Context, cfg *config.Config, text string, fileExt string) (string, error) {
	dir, err := os.MkdirTemp("", "texlab-indent-")
	if err != nil {
		return "", fmt.Errorf("external: latexindent temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input"+fileExt)
	if err := os.WriteFile(input, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("external: latexindent input: %w", err)
	}

	args := []string{"--local"}
	if cfg.FormatterLineLength > 0 {
		args = append(args, "--modifylinebreaks")
	}
	args = append(args, input)

	cmd := exec.CommandContext(ctx, "latexindent", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("external: latexindent: %w", err)
	}
	return string(out), nil
}
