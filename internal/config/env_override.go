package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides overlays TEXLAB_*-prefixed environment variables onto an
// already-loaded Config. Only a
// deliberately small set of high-value knobs is exposed this way; the rest
// of the tree is configured through the YAML file or workspace/configuration.
func ApplyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("TEXLAB_ROOT_DIRECTORY"); ok {
		cfg.RootDirectory = v
	}
	if v, ok := os.LookupEnv("TEXLAB_AUX_DIRECTORY"); ok {
		cfg.AuxDirectory = v
	}
	if v, ok := os.LookupEnv("TEXLAB_LOG_DIRECTORY"); ok {
		cfg.LogDirectory = v
	}
	if v, ok := os.LookupEnv("TEXLAB_PDF_DIRECTORY"); ok {
		cfg.PdfDirectory = v
	}
	if v, ok := os.LookupEnv("TEXLAB_BUILD_EXECUTABLE"); ok {
		cfg.Build.Executable = v
	}
	if v, ok := os.LookupEnv("TEXLAB_BUILD_ARGS"); ok {
		cfg.Build.Args = strings.Fields(v)
	}
	if v, ok := os.LookupEnv("TEXLAB_DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.DebugMode = b
		}
	}
}
