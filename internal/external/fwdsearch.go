package external

import (
	"fmt"
	"os/exec"
	"strconv"

	"texlab-go/internal/config"
	"texlab-go/internal/logging"
)

// ForwardSearch launches the configured viewer/synctex command for the
// given tex file, pdf file and line, fire-and-forget: the engine does
// not wait for the viewer to exit.
func ForwardSearch(cfg *config.Config, texPath, pdfPath string, line int, workDir string) error {
	if cfg.Synctex.Executable == "" {
		return fmt.Errorf("external: no forward-search executable configured")
	}
	args := ReplacePlaceholders(cfg.Synctex.Args, map[rune]string{
		'f': texPath,
		'p': pdfPath,
		'l': strconv.Itoa(line),
	})
	cmd := exec.Command(cfg.Synctex.Executable, args...)
	cmd.Dir = workDir
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("external: forward search spawn: %w", err)
	}
	logging.Get(logging.CategoryBuild).Info("forward search: %s (pid %d)", cfg.Synctex.Executable, cmd.Process.Pid)
	// Reap the child in the background so fire-and-forget never leaks a
	// zombie process.
	go func() { _ = cmd.Wait() }()
	return nil
}
