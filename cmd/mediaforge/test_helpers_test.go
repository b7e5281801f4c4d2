package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaforge/internal/config"
	"mediaforge/internal/testsupport"
)

const audioProbeJSON = `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "mp3", "sample_rate": "44100", "channels": 2, "bit_rate": "320000"}
  ],
  "format": {"filename": "in.mp3", "duration": "12.5", "size": "500000", "bit_rate": "320000", "format_name": "mp3", "format_long_name": "MP2/3 (MPEG audio layer 2/3)"}
}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	inputDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries(audioProbeJSON)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	inputDir := filepath.Join(base, "input")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		inputDir:   inputDir,
	}
}

// input creates a media file under the env's input directory.
func (e *cliTestEnv) input(t *testing.T, name string) string {
	t.Helper()
	return testsupport.WriteMedia(t, e.inputDir, name)[0]
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
profiles_file = %q
selection_file = %q
output_dir = %q
log_dir = %q
history_db = %q

[engine]
ffmpeg_binary = %q
ffprobe_binary = %q

[convert]
on_existing = %q
clear_selection = %t

[logging]
level = "error"
`,
		cfg.Paths.ProfilesFile,
		cfg.Paths.SelectionFile,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		cfg.Paths.HistoryDB,
		cfg.Engine.FFmpegBinary,
		cfg.Engine.FFprobeBinary,
		cfg.Convert.OnExisting,
		cfg.Convert.ClearSelection,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
