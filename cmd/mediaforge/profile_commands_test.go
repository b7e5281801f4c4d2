package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"mediaforge/internal/profile"
	"mediaforge/internal/testsupport"
)

func TestProfilesListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"profiles", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles list: %v", err)
	}
	requireContains(t, out, "double_speed")
	requireContains(t, out, "youtube_1080p")

	out, _, err = runCLI(t, []string{"profiles", "list", "--category", "audio", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles list --json: %v", err)
	}
	var listing map[string][]string
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("decode listing: %v\n%s", err, out)
	}
	if _, ok := listing["video"]; ok {
		t.Fatalf("expected only audio profiles, got %v", listing)
	}
	if len(listing["audio"]) != 4 {
		t.Fatalf("expected 4 default audio profiles, got %v", listing["audio"])
	}

	out, _, err = runCLI(t, []string{"profiles", "show", "audio", "double_speed"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles show: %v", err)
	}
	requireContains(t, out, "audio.audio_speed")
	requireContains(t, out, "2x")

	if _, _, err := runCLI(t, []string{"profiles", "show", "podcast", "x"}, env.configPath); err == nil {
		t.Fatal("expected unknown category to fail")
	}
}

func TestProfilesCreateEditRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"profiles", "create", "audio", "podcast", "audio.bitrate=128k", "container=m4a", "audio.codec=aac"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles create: %v", err)
	}
	requireContains(t, out, `Created audio profile "podcast"`)
	created, err := testsupport.MustOpenProfiles(t, env.cfg).Get(profile.CategoryAudio, "podcast")
	if err != nil {
		t.Fatalf("stored profile: %v", err)
	}
	if created.Container != "m4a" || created.Audio.Bitrate != "128k" || created.Audio.AudioSpeed != profile.DefaultSpeed {
		t.Fatalf("unexpected stored profile %+v", created.Audio)
	}

	if _, _, err := runCLI(t, []string{"profiles", "create", "audio", "podcast"}, env.configPath); err == nil {
		t.Fatal("expected duplicate create to fail")
	}
	_, _, err = runCLI(t, []string{"profiles", "create", "audio", "broken", "audio.bitrate=999k"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "audio.bitrate") {
		t.Fatalf("expected validation error naming audio.bitrate, got %v", err)
	}

	_, _, err = runCLI(t, []string{"profiles", "edit", "audio", "podcast", "audio.bitrate", "7k"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "allowed:") {
		t.Fatalf("expected edit error listing allowed values, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"profiles", "edit", "audio", "podcast", "audio.audio_speed", "1.5x"}, env.configPath); err != nil {
		t.Fatalf("profiles edit: %v", err)
	}
	out, _, err = runCLI(t, []string{"profiles", "show", "audio", "podcast"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles show: %v", err)
	}
	requireContains(t, out, "1.5x")
	requireContains(t, out, "container m4a")

	if _, _, err := runCLI(t, []string{"profiles", "rename", "audio", "podcast", "talk"}, env.configPath); err != nil {
		t.Fatalf("profiles rename: %v", err)
	}
	if _, _, err := runCLI(t, []string{"profiles", "rm", "audio", "talk"}, env.configPath); err != nil {
		t.Fatalf("profiles remove: %v", err)
	}
	out, _, err = runCLI(t, []string{"profiles", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles list: %v", err)
	}
	requireNotContains(t, out, "talk")
}

func TestProfilesEditVideoSpeedSync(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"profiles", "edit", "video", "youtube_1080p", "video.speed_control", "2x"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles edit: %v", err)
	}
	requireContains(t, out, "kept in sync")

	out, _, err = runCLI(t, []string{"profiles", "show", "video", "youtube_1080p", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles show --json: %v", err)
	}
	var doc struct {
		Video map[string]any `json:"video"`
		Audio map[string]any `json:"audio"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode profile: %v\n%s", err, out)
	}
	if doc.Video["speed_control"] != "2x" || doc.Audio["audio_speed"] != "2x" {
		t.Fatalf("expected synchronized 2x speeds, got video=%v audio=%v", doc.Video["speed_control"], doc.Audio["audio_speed"])
	}
}

func TestProfilesExportImport(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fast.json")

	if _, _, err := runCLI(t, []string{"profiles", "export", "video", "fast_motion", "-o", target}, env.configPath); err != nil {
		t.Fatalf("profiles export: %v", err)
	}
	if _, _, err := runCLI(t, []string{"profiles", "import", "video", "fast_motion", target}, env.configPath); err == nil {
		t.Fatal("expected import over an existing name to require --force")
	}
	out, _, err := runCLI(t, []string{"profiles", "import", "video", "fast_copy", target}, env.configPath)
	if err != nil {
		t.Fatalf("profiles import: %v", err)
	}
	requireContains(t, out, `Imported video profile "fast_copy"`)
}

func TestProfilesParamsAndOptions(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"profiles", "params", "audio"}, "")
	if err != nil {
		t.Fatalf("profiles params: %v", err)
	}
	requireContains(t, out, "audio.sample_rate")
	requireNotContains(t, out, "video.")

	out, _, err = runCLI(t, []string{"profiles", "options", "audio.channels"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles options: %v", err)
	}
	requireContains(t, out, "5.1")
}

func TestProfilesInfer(t *testing.T) {
	env := setupCLITestEnv(t)
	ref := env.input(t, "reference.mp3")

	out, _, err := runCLI(t, []string{"profiles", "infer", ref, "like_reference"}, env.configPath)
	if err != nil {
		t.Fatalf("profiles infer: %v", err)
	}
	requireContains(t, out, `Created audio profile "like_reference"`)
	requireContains(t, out, "container mp3")
}

func TestSchemaCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"schema"}, env.configPath)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	requireContains(t, out, "audio_speeds")

	out, _, err = runCLI(t, []string{"schema", "speed_controls"}, env.configPath)
	if err != nil {
		t.Fatalf("schema speed_controls: %v", err)
	}
	requireContains(t, out, "0.5x")
}
