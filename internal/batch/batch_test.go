package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"mediaforge/internal/config"
	"mediaforge/internal/engine"
	"mediaforge/internal/history"
	"mediaforge/internal/media/ffprobe"
	"mediaforge/internal/profile"
	"mediaforge/internal/testsupport"
)

type stubRunner struct {
	jobs    []engine.Job
	fail    map[string]error
	onStart func(engine.Job)
}

func (r *stubRunner) Run(ctx context.Context, job engine.Job, onProgress func(engine.Progress)) error {
	r.jobs = append(r.jobs, job)
	if r.onStart != nil {
		r.onStart(job)
	}
	if err := r.fail[filepath.Base(job.Input)]; err != nil {
		return err
	}
	if onProgress != nil {
		onProgress(engine.Progress{Input: job.Input, Percent: 50})
		onProgress(engine.Progress{Input: job.Input, Percent: 100, Done: true})
	}
	return os.WriteFile(job.Output, []byte("converted"), 0o644)
}

type stubProber struct {
	video bool
}

func (p stubProber) Inspect(context.Context, string) (ffprobe.Result, error) {
	res := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "audio"}},
		Format:  ffprobe.Format{Duration: "12.5"},
	}
	if p.video {
		res.Streams = append(res.Streams, ffprobe.Stream{CodecType: "video", Width: 1280, Height: 720})
	}
	return res, nil
}

type memoryJournal struct {
	entries []history.Entry
}

func (j *memoryJournal) Record(_ context.Context, entry history.Entry) (int64, error) {
	j.entries = append(j.entries, entry)
	return int64(len(j.entries)), nil
}

func newFixture(t *testing.T) (*profile.Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := profile.Open(filepath.Join(dir, "profiles.json"))
	if err != nil {
		t.Fatalf("open profiles: %v", err)
	}
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatal(err)
	}
	return store, in, out
}

func writeInput(t *testing.T, path string) string {
	t.Helper()
	testsupport.WriteFile(t, path, 6)
	return path
}

func TestConvertAudioBatch(t *testing.T) {
	store, in, out := newFixture(t)
	input := writeInput(t, filepath.Join(in, "a.wav"))
	runner := &stubRunner{}
	journal := &memoryJournal{}
	var bar bytes.Buffer
	conv := New(store, runner, WithJournal(journal), WithProber(stubProber{}), WithProgressOutput(&bar))

	summary, err := conv.Convert(context.Background(), Request{
		Category:  profile.CategoryAudio,
		Profile:   "double_speed",
		Files:     []string{input},
		OutputDir: out,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if summary.RunID == "" || summary.Count(history.StatusSucceeded) != 1 || summary.Failed() {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(runner.jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(runner.jobs))
	}
	job := runner.jobs[0]
	if job.Output != filepath.Join(out, "a.mp3") {
		t.Fatalf("output = %q", job.Output)
	}
	// 12.5s of source at 2x runs 6.25s in the output.
	if job.Duration.Seconds() != 6.25 {
		t.Fatalf("duration = %v", job.Duration)
	}
	if !slices.Contains(job.Args, "atempo=2.0") || job.Args[len(job.Args)-1] != job.Output {
		t.Fatalf("args = %v", job.Args)
	}
	if len(journal.entries) != 1 || journal.entries[0].RunID != summary.RunID || journal.entries[0].Status != history.StatusSucceeded {
		t.Fatalf("journal = %+v", journal.entries)
	}
	if bar.Len() == 0 {
		t.Fatal("expected progress bar output")
	}
}

func TestPlanCollisionPolicies(t *testing.T) {
	store, in, out := newFixture(t)
	input := writeInput(t, filepath.Join(in, "a.wav"))
	writeInput(t, filepath.Join(out, "a.mp3"))
	conv := New(store, &stubRunner{})

	tests := []struct {
		policy     string
		wantOutput string
		wantAction Action
	}{
		{config.OnExistingRename, filepath.Join(out, "a1.mp3"), ActionConvert},
		{config.OnExistingOverwrite, filepath.Join(out, "a.mp3"), ActionOverwrite},
		{config.OnExistingSkip, filepath.Join(out, "a.mp3"), ActionSkip},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			plan, err := conv.Plan(context.Background(), Request{
				Category: profile.CategoryAudio, Profile: "mp3_high",
				Files: []string{input}, OutputDir: out, OnExisting: tt.policy,
			})
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			item := plan.Items[0]
			if item.Output != tt.wantOutput || item.Action != tt.wantAction {
				t.Fatalf("item = %+v", item)
			}
			if tt.wantAction == ActionSkip && (item.Args != nil || plan.Pending() != 0) {
				t.Fatalf("skipped item should not carry args: %+v", item)
			}
		})
	}

	_, err := conv.Plan(context.Background(), Request{
		Category: profile.CategoryAudio, Profile: "mp3_high",
		Files: []string{input}, OutputDir: out, OnExisting: config.OnExistingFail,
	})
	if !errors.Is(err, ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
}

func TestPlanReservesOutputsWithinBatch(t *testing.T) {
	store, in, out := newFixture(t)
	first := writeInput(t, filepath.Join(in, "one", "song.wav"))
	second := writeInput(t, filepath.Join(in, "two", "song.flac"))
	conv := New(store, &stubRunner{})

	plan, err := conv.Plan(context.Background(), Request{
		Category: profile.CategoryAudio, Profile: "mp3_high",
		Files: []string{first, second}, OutputDir: out, OnExisting: config.OnExistingOverwrite,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Items[0].Output != filepath.Join(out, "song.mp3") || plan.Items[1].Output != filepath.Join(out, "song1.mp3") {
		t.Fatalf("outputs = %q, %q", plan.Items[0].Output, plan.Items[1].Output)
	}
}

func TestPlanNeverOverwritesInput(t *testing.T) {
	store, in, _ := newFixture(t)
	input := writeInput(t, filepath.Join(in, "track.mp3"))
	conv := New(store, &stubRunner{})

	plan, err := conv.Plan(context.Background(), Request{
		Category: profile.CategoryAudio, Profile: "mp3_high",
		Files: []string{input}, OutputDir: in, OnExisting: config.OnExistingOverwrite,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if got := plan.Items[0].Output; got != filepath.Join(in, "track1.mp3") {
		t.Fatalf("output = %q", got)
	}
}

func TestPlanResolvesCategory(t *testing.T) {
	store, in, out := newFixture(t)
	if err := store.Add(profile.CategoryVideo, "shared", profile.Template(profile.CategoryVideo)); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(profile.CategoryAudio, "shared", profile.Template(profile.CategoryAudio)); err != nil {
		t.Fatal(err)
	}
	clip := writeInput(t, filepath.Join(in, "clip.mov"))
	song := writeInput(t, filepath.Join(in, "song.wav"))

	probed := New(store, &stubRunner{}, WithProber(stubProber{video: true}))
	plan, err := probed.Plan(context.Background(), Request{Profile: "shared", Files: []string{song}, OutputDir: out})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Items[0].Category != profile.CategoryVideo {
		t.Fatalf("probe should win, got %s", plan.Items[0].Category)
	}

	byExtension := New(store, &stubRunner{})
	plan, err = byExtension.Plan(context.Background(), Request{Profile: "shared", Files: []string{clip, song}, OutputDir: out})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Items[0].Category != profile.CategoryVideo || plan.Items[1].Category != profile.CategoryAudio {
		t.Fatalf("categories = %s, %s", plan.Items[0].Category, plan.Items[1].Category)
	}
	if plan.Items[0].Output != filepath.Join(out, "clip.mp4") {
		t.Fatalf("video output = %q", plan.Items[0].Output)
	}

	single, err := byExtension.Plan(context.Background(), Request{Profile: "fast_motion", Files: []string{song}, OutputDir: out})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if single.Items[0].Category != profile.CategoryVideo {
		t.Fatalf("single holder should be used, got %s", single.Items[0].Category)
	}

	if _, err := byExtension.Plan(context.Background(), Request{Profile: "missing", Files: []string{song}, OutputDir: out}); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanRejectsBadRequests(t *testing.T) {
	store, in, out := newFixture(t)
	input := writeInput(t, filepath.Join(in, "a.wav"))
	conv := New(store, &stubRunner{})
	ctx := context.Background()

	if _, err := conv.Plan(ctx, Request{Profile: "mp3_high", OutputDir: out}); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
	if _, err := conv.Plan(ctx, Request{Files: []string{input}, OutputDir: out}); err == nil {
		t.Fatal("expected error without profile")
	}
	if _, err := conv.Plan(ctx, Request{Profile: "mp3_high", Files: []string{input}, OutputDir: out, OnExisting: "merge"}); err == nil {
		t.Fatal("expected error for unknown policy")
	}
	if _, err := conv.Plan(ctx, Request{Category: "image", Profile: "mp3_high", Files: []string{input}, OutputDir: out}); !errors.Is(err, profile.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	store, in, out := newFixture(t)
	bad := writeInput(t, filepath.Join(in, "bad.wav"))
	good := writeInput(t, filepath.Join(in, "good.wav"))
	runner := &stubRunner{fail: map[string]error{"bad.wav": errors.New("ffmpeg exited 1")}}
	journal := &memoryJournal{}
	conv := New(store, runner, WithJournal(journal))

	summary, err := conv.Convert(context.Background(), Request{
		Category: profile.CategoryAudio, Profile: "mp3_high",
		Files: []string{bad, good}, OutputDir: out,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !summary.Failed() || summary.Count(history.StatusSucceeded) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Results[0].Err == nil {
		t.Fatal("failed result should carry the error")
	}
	if journal.entries[0].Error != "ffmpeg exited 1" {
		t.Fatalf("journal error = %q", journal.entries[0].Error)
	}
}

func TestRunRecordsSkips(t *testing.T) {
	store, in, out := newFixture(t)
	input := writeInput(t, filepath.Join(in, "a.wav"))
	writeInput(t, filepath.Join(out, "a.mp3"))
	runner := &stubRunner{}
	journal := &memoryJournal{}
	conv := New(store, runner, WithJournal(journal))

	summary, err := conv.Convert(context.Background(), Request{
		Category: profile.CategoryAudio, Profile: "mp3_high",
		Files: []string{input}, OutputDir: out, OnExisting: config.OnExistingSkip,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(runner.jobs) != 0 || summary.Count(history.StatusSkipped) != 1 {
		t.Fatalf("jobs = %d, summary = %+v", len(runner.jobs), summary)
	}
	if journal.entries[0].Status != history.StatusSkipped || journal.entries[0].Error != "output exists" {
		t.Fatalf("journal = %+v", journal.entries)
	}
}

func TestRunCancelledMarksRemaining(t *testing.T) {
	store, in, out := newFixture(t)
	files := []string{
		writeInput(t, filepath.Join(in, "a.wav")),
		writeInput(t, filepath.Join(in, "b.wav")),
		writeInput(t, filepath.Join(in, "c.wav")),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &stubRunner{onStart: func(engine.Job) { cancel() }}
	journal := &memoryJournal{}
	conv := New(store, runner, WithJournal(journal))

	summary, err := conv.Convert(ctx, Request{
		Category: profile.CategoryAudio, Profile: "mp3_high",
		Files: files, OutputDir: out,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(runner.jobs) != 1 {
		t.Fatalf("expected one job before cancellation, got %d", len(runner.jobs))
	}
	if summary.Count(history.StatusCancelled) != 2 || len(journal.entries) != 3 {
		t.Fatalf("summary = %+v, journal = %d", summary, len(journal.entries))
	}
}

func TestPlanScalesDurationBySpeed(t *testing.T) {
	store, in, out := newFixture(t)
	input := writeInput(t, filepath.Join(in, "clip.mov"))
	conv := New(store, &stubRunner{}, WithProber(stubProber{video: true}))

	tests := []struct {
		profile string
		want    float64
	}{
		{"h264_web_optimized", 12.5},
		{"fast_motion", 6.25},
		{"slow_motion", 25},
	}
	for _, tt := range tests {
		plan, err := conv.Plan(context.Background(), Request{Profile: tt.profile, Files: []string{input}, OutputDir: out})
		if err != nil {
			t.Fatalf("Plan %s: %v", tt.profile, err)
		}
		if got := plan.Items[0].Duration.Seconds(); got != tt.want {
			t.Fatalf("%s duration = %vs, want %vs", tt.profile, got, tt.want)
		}
	}
}
