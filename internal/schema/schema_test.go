package schema

import (
	"slices"
	"testing"
)

func TestDefaultListsCarryCopySentinel(t *testing.T) {
	s := Default()
	for _, key := range s.Keys() {
		values, _ := s.Options(key)
		hasCopy := slices.Contains(values, Copy)
		switch {
		case IsSpeedKey(key), key == Containers:
			if hasCopy {
				t.Fatalf("%s must not contain copy", key)
			}
		default:
			if !hasCopy {
				t.Fatalf("%s must contain copy", key)
			}
		}
	}
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a[Containers][0] = "bogus"
	b := Default()
	if b[Containers][0] == "bogus" {
		t.Fatal("expected Default to return a fresh copy")
	}
}

func TestOptionKeyCatalogue(t *testing.T) {
	cases := []struct {
		section, param, want string
	}{
		{"video", "speed_control", SpeedControls},
		{"audio", "audio_speed", AudioSpeeds},
		{"video", "fps", Framerates},
		{"audio", "channels", ChannelLayouts},
		{"video", "unknown", "video_unknowns"},
	}
	for _, tc := range cases {
		if got := OptionKey(tc.section, tc.param); got != tc.want {
			t.Fatalf("OptionKey(%s, %s) = %q, want %q", tc.section, tc.param, got, tc.want)
		}
	}
}

func TestValidationKeyFollowsNamingRule(t *testing.T) {
	if got := ValidationKey("audio", "codec"); got != AudioCodecs {
		t.Fatalf("unexpected audio codec key %q", got)
	}
	if got := ValidationKey("video", "codec"); got != VideoCodecs {
		t.Fatalf("unexpected video codec key %q", got)
	}
	if got := ValidationKey("video", "resolution"); got != "video_resolutions" {
		t.Fatalf("unexpected resolution key %q", got)
	}
}

func TestMergeKeepsOverrides(t *testing.T) {
	s := Schema{Containers: {"mkv"}}
	if !s.Merge(Default()) {
		t.Fatal("expected merge to report added lists")
	}
	if got, _ := s.Options(Containers); len(got) != 1 || got[0] != "mkv" {
		t.Fatalf("override lost: %v", got)
	}
	if !s.Has(VideoCodecs) {
		t.Fatal("expected missing lists to be filled")
	}
	if s.Merge(Default()) {
		t.Fatal("second merge should be a no-op")
	}
}

func TestAllowsCustomResolution(t *testing.T) {
	s := Default()
	if !s.Allows(Resolutions, "720x1280") {
		t.Fatal("expected custom resolution to be allowed")
	}
	if s.Allows(Resolutions, "720 by 1280") {
		t.Fatal("expected malformed resolution to be rejected")
	}
	if s.Allows(VideoCodecs, "h264_nvenc") {
		t.Fatal("expected unknown codec to be rejected")
	}
	s[Resolutions] = []string{"copy", "1920x1080"}
	if s.Allows(Resolutions, "720x1280") {
		t.Fatal("custom resolutions require a custom entry in the list")
	}
}
