package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Run("overrides root directory", func(t *testing.T) {
		t.Setenv("TEXLAB_ROOT_DIRECTORY", "/workspace/project")
		cfg := DefaultConfig()
		ApplyEnvOverrides(cfg)
		assert.Equal(t, "/workspace/project", cfg.RootDirectory)
	})

	t.Run("overrides build executable and args", func(t *testing.T) {
		t.Setenv("TEXLAB_BUILD_EXECUTABLE", "tectonic")
		t.Setenv("TEXLAB_BUILD_ARGS", "-X compile --synctex")
		cfg := DefaultConfig()
		ApplyEnvOverrides(cfg)
		assert.Equal(t, "tectonic", cfg.Build.Executable)
		assert.Equal(t, []string{"-X", "compile", "--synctex"}, cfg.Build.Args)
	})

	t.Run("parses debug flag", func(t *testing.T) {
		t.Setenv("TEXLAB_DEBUG", "true")
		cfg := DefaultConfig()
		ApplyEnvOverrides(cfg)
		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("leaves defaults untouched when unset", func(t *testing.T) {
		cfg := DefaultConfig()
		before := *cfg
		ApplyEnvOverrides(cfg)
		assert.Equal(t, before.Build.Executable, cfg.Build.Executable)
	})
}
