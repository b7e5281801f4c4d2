package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediaforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ProfilesFile = filepath.Join(base, "state", "profiles.json")
	cfgVal.Paths.SelectionFile = filepath.Join(base, "state", "selection.json")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	cfgVal.Paths.OutputDir = filepath.Join(base, "converted")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Engine.FFmpegBinary = filepath.Join(base, "bin", "ffmpeg")
	cfgVal.Engine.FFprobeBinary = filepath.Join(base, "bin", "ffprobe")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOnExisting sets the collision policy.
func WithOnExisting(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.OnExisting = policy
	}
}

// WithStubbedBinaries writes an ffmpeg stub that creates its output file and
// reports completion on the progress pipe, plus an ffprobe stub printing
// probeJSON. An empty probeJSON makes ffprobe fail.
func WithStubbedBinaries(probeJSON string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		ffmpeg := "#!/bin/sh\nfor last; do :; done\nprintf 'out_time=00:00:01.000000\\nprogress=end\\n'\nprintf 'converted' > \"$last\"\n"
		writeScript(b.t, b.cfg.Engine.FFmpegBinary, ffmpeg)

		ffprobe := "#!/bin/sh\necho 'ffprobe stub failure' >&2\nexit 1\n"
		if probeJSON != "" {
			payload := filepath.Join(binDir, "probe.json")
			if err := os.WriteFile(payload, []byte(probeJSON), 0o644); err != nil {
				b.t.Fatalf("write probe payload: %v", err)
			}
			ffprobe = "#!/bin/sh\ncat '" + payload + "'\n"
		}
		writeScript(b.t, b.cfg.Engine.FFprobeBinary, ffprobe)
	}
}

// WithFailingFFmpeg replaces the ffmpeg stub with one that exits non-zero.
func WithFailingFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		writeScript(b.t, b.cfg.Engine.FFmpegBinary, "#!/bin/sh\necho 'Conversion failed!' >&2\nexit 1\n")
	}
}

func writeScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
