package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaforge/internal/config"
	"mediaforge/internal/testsupport"
)

func TestSelectAndConvert(t *testing.T) {
	env := setupCLITestEnv(t)
	a := env.input(t, "a.mp3")
	b := env.input(t, "b.wav")

	out, _, err := runCLI(t, []string{"select", "add", a, b}, env.configPath)
	if err != nil {
		t.Fatalf("select add: %v", err)
	}
	requireContains(t, out, "Added 2 file(s); 2 selected")

	out, _, err = runCLI(t, []string{"select", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("select list: %v", err)
	}
	requireContains(t, out, "a.mp3")
	requireContains(t, out, "b.wav")

	out, _, err = runCLI(t, []string{"convert", "--profile", "double_speed"}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "2 succeeded, 0 failed")
	requireContains(t, out, "Selection cleared")

	for _, name := range []string{"a.mp3", "b.mp3"} {
		data, err := os.ReadFile(filepath.Join(env.cfg.Paths.OutputDir, name))
		if err != nil {
			t.Fatalf("expected output %s: %v", name, err)
		}
		if string(data) != "converted" {
			t.Fatalf("unexpected output content %q", data)
		}
	}

	out, _, err = runCLI(t, []string{"select", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("select list: %v", err)
	}
	requireContains(t, out, "No files selected")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "succeeded")
	requireContains(t, out, "double_speed")

	journal := testsupport.MustOpenHistory(t, env.cfg)
	entries, err := journal.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if len(entries) != 2 || entries[0].RunID == "" || entries[0].RunID != entries[1].RunID {
		t.Fatalf("expected two entries sharing one run id, got %+v", entries)
	}
	if entries[0].Category != "audio" {
		t.Fatalf("expected audio category, got %q", entries[0].Category)
	}
}

func TestConvertRenamesOnCollision(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.input(t, "song.mp3")
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "song.mp3"), 10)

	if _, _, err := runCLI(t, []string{"convert", "--profile", "mp3_high", input}, env.configPath); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "song1.mp3")); err != nil {
		t.Fatalf("expected renamed output: %v", err)
	}

	_, _, err := runCLI(t, []string{"convert", "--profile", "mp3_high", "--on-existing", "fail", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "output already exists") {
		t.Fatalf("expected collision failure, got %v", err)
	}

	out, _, err := runCLI(t, []string{"convert", "--profile", "mp3_high", "--on-existing", "skip", input}, env.configPath)
	if err != nil {
		t.Fatalf("convert --on-existing skip: %v", err)
	}
	requireContains(t, out, "1 skipped")
}

func TestConvertReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFailingFFmpeg())
	input := env.input(t, "clip.mp4")

	_, _, err := runCLI(t, []string{"convert", "--profile", "youtube_1080p", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 conversion(s) failed") {
		t.Fatalf("expected failed conversion error, got %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var entries []struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(entries) != 1 || entries[0].Status != "failed" {
		t.Fatalf("expected one failed entry, got %+v", entries)
	}
	if !strings.Contains(entries[0].Error, "Conversion failed!") {
		t.Fatalf("expected ffmpeg stderr in error, got %q", entries[0].Error)
	}
}

func TestConvertWithoutSelection(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"convert", "--profile", "mp3_high"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no files selected") {
		t.Fatalf("expected empty selection error, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"convert"}, env.configPath); err == nil {
		t.Fatal("expected missing --profile to fail")
	}
}

func TestConvertMissingFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	input := env.input(t, "a.mp3")
	if err := os.Remove(env.cfg.Engine.FFmpegBinary); err != nil {
		t.Fatalf("remove ffmpeg stub: %v", err)
	}

	_, _, err := runCLI(t, []string{"convert", "--profile", "mp3_high", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "preflight failed") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
}

func TestPlanPrintsCommands(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithOnExisting(config.OnExistingSkip))
	input := env.input(t, "talk.mp3")

	out, _, err := runCLI(t, []string{"plan", "--profile", "double_speed", input}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "[convert]")
	requireContains(t, out, "atempo=2.0")
	requireContains(t, out, "-progress pipe:1")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "talk.mp3")); !os.IsNotExist(err) {
		t.Fatalf("plan must not convert, stat err=%v", err)
	}

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "talk.mp3"), 10)
	out, _, err = runCLI(t, []string{"plan", "--profile", "double_speed", "--json", input}, env.configPath)
	if err != nil {
		t.Fatalf("plan --json: %v", err)
	}
	var planned []plannedCommand
	if err := json.Unmarshal([]byte(out), &planned); err != nil {
		t.Fatalf("decode plan: %v\n%s", err, out)
	}
	if len(planned) != 1 || planned[0].Action != "skip" || len(planned[0].Command) != 0 {
		t.Fatalf("expected a skipped item without command, got %+v", planned)
	}
}

func TestShellJoin(t *testing.T) {
	got := shellJoin([]string{"ffmpeg", "-i", "/in/my file.mp3", "-af", "atempo=2.0", "it's.mp3"})
	want := `ffmpeg -i '/in/my file.mp3' -af atempo=2.0 'it'\''s.mp3'`
	if got != want {
		t.Fatalf("shellJoin mismatch\n got: %s\nwant: %s", got, want)
	}
}
