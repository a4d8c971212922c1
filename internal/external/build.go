package external

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"

	"texlab-go/internal/config"
	"texlab-go/internal/logging"
)

// BuildStatus is the closed result taxonomy of one build run.
type BuildStatus int

const (
	BuildSuccess BuildStatus = iota
	BuildError
	BuildCancelled
	BuildFailure
)

func (s BuildStatus) String() string {
	switch s {
	case BuildSuccess:
		return "success"
	case BuildError:
		return "error"
	case BuildCancelled:
		return "cancelled"
	default:
		return "failure"
	}
}

// ErrBuildInProgress is returned when a build is already running against
// the same working directory.
var ErrBuildInProgress = errors.New("external: a build is already running for this directory")

// Builder spawns the configured build tool, streaming its combined
// output line-by-line to a progress callback. The in-flight guard is
// keyed by the resolved working directory, so distinct projects build
// concurrently while a second build against the same root is rejected.
type Builder struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewBuilder constructs a Builder with no builds in flight.
func NewBuilder() *Builder {
	return &Builder{inFlight: map[string]bool{}}
}

// Run spawns the build for texPath inside workDir and blocks until it
// finishes. Each output line is delivered to onLine before the status is
// returned; onLine may be nil. A build already in flight for workDir is
// rejected with ErrBuildInProgress.
func (b *Builder) Run(ctx context.Context, cfg *config.Config, texPath, pdfPath, workDir string, onLine func(string)) (BuildStatus, error) {
	b.mu.Lock()
	if b.inFlight[workDir] {
		b.mu.Unlock()
		return BuildFailure, ErrBuildInProgress
	}
	b.inFlight[workDir] = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.inFlight, workDir)
		b.mu.Unlock()
	}()

	args := ReplacePlaceholders(cfg.Build.Args, map[rune]string{
		'f': texPath,
		'p': pdfPath,
	})
	// Every run gets a correlation id so interleaved builds of different
	// projects can be told apart in the logs.
	runID := uuid.NewString()
	log := logging.Get(logging.CategoryBuild)
	log.Info("build %s: %s %s (cwd %s)", runID, cfg.Build.Executable, strings.Join(args, " "), workDir)

	cmd := exec.CommandContext(ctx, cfg.Build.Executable, args...)
	cmd.Dir = workDir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return BuildFailure, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		log.Warn("build %s: spawn failed: %v", runID, err)
		return BuildFailure, err
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}

	err = cmd.Wait()
	switch {
	case ctx.Err() != nil:
		return BuildCancelled, nil
	case err == nil:
		return BuildSuccess, nil
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return BuildError, nil
		}
		return BuildFailure, err
	}
}
