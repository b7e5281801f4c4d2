package schema

import (
	"slices"
	"sort"
)

// Copy is the sentinel option meaning "pass the stream through unchanged".
const Copy = "copy"

// Option list keys.
const (
	VideoCodecs    = "video_codecs"
	Resolutions    = "resolutions"
	VideoBitrates  = "video_bitrates"
	CRFValues      = "crf_values"
	Framerates     = "framerates"
	PixelFormats   = "pixel_formats"
	GOPSizes       = "gop_sizes"
	Presets        = "presets"
	TuneOptions    = "tune_options"
	SpeedControls  = "speed_controls"
	AudioCodecs    = "audio_codecs"
	AudioBitrates  = "audio_bitrates"
	SampleRates    = "sample_rates"
	ChannelLayouts = "channel_layouts"
	AudioSpeeds    = "audio_speeds"
	Containers     = "containers"
)

// Re-encodable codecs substituted for "copy" when a speed change is requested.
const (
	FallbackVideoCodec = "libx264"
	FallbackAudioCodec = "aac"
)

// Schema maps option list keys to the values a profile parameter may take.
// A Schema obtained from this package is never mutated in place; use Clone
// before editing.
type Schema map[string][]string

var builtin = Schema{
	VideoCodecs:    {"copy", "libx264", "libx265", "libvpx-vp9", "mpeg4", "prores"},
	Resolutions:    {"copy", "3840x2160", "2560x1440", "1920x1080", "1280x720", "854x480", "640x360", "custom (e.g., 720x1280)"},
	VideoBitrates:  {"copy", "1M", "2M", "4M", "6M", "8M", "10M", "12M", "15M", "20M"},
	CRFValues:      {"copy", "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "27", "28"},
	Framerates:     {"copy", "23.976", "24", "25", "29.97", "30", "48", "50", "59.94", "60"},
	PixelFormats:   {"copy", "yuv420p", "yuv422p", "yuv444p", "rgb24", "yuv420p10le", "yuv422p10le"},
	GOPSizes:       {"copy", "30", "60", "120"},
	Presets:        {"copy", "ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow", "placebo"},
	TuneOptions:    {"copy", "film", "animation", "grain", "stillimage", "fastdecode", "zerolatency"},
	SpeedControls:  {"0.25x", "0.5x", "0.75x", "1x", "1.25x", "1.5x", "1.75x", "2x", "4x", "10x"},
	AudioCodecs:    {"copy", "aac", "libmp3lame", "flac", "opus", "pcm_s16le", "pcm_s24le", "vorbis"},
	AudioBitrates:  {"copy", "96k", "128k", "160k", "192k", "224k", "256k", "320k", "384k", "448k", "512k"},
	SampleRates:    {"copy", "22050", "32000", "44100", "48000", "88200", "96000"},
	ChannelLayouts: {"copy", "1", "2", "2.1", "3", "4", "5.0", "5.1", "6.1", "7.1"},
	AudioSpeeds:    {"0.25x", "0.5x", "0.75x", "1x", "1.25x", "1.5x", "1.75x", "2x", "4x", "10x"},
	Containers:     {"mp4", "mkv", "mov", "webm", "avi", "ts", "mxf", "mp3", "m4a", "flac", "wav", "ogg"},
}

// Default returns a copy of the compiled-in schema.
func Default() Schema {
	return builtin.Clone()
}

// Clone returns a deep copy of s.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for key, values := range s {
		out[key] = slices.Clone(values)
	}
	return out
}

// Options returns the option list registered under key.
func (s Schema) Options(key string) ([]string, bool) {
	values, ok := s[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(values), true
}

// Has reports whether an option list is registered under key.
func (s Schema) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Contains reports whether value is a member of the option list under key.
// A missing list contains nothing.
func (s Schema) Contains(key, value string) bool {
	return slices.Contains(s[key], value)
}

// Keys returns the registered option list keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Merge fills option lists missing from s with the compiled-in defaults and
// reports whether anything was added. Lists already present are kept as-is so
// on-disk overrides win.
func (s Schema) Merge(defaults Schema) bool {
	changed := false
	for key, values := range defaults {
		if _, ok := s[key]; ok {
			continue
		}
		s[key] = slices.Clone(values)
		changed = true
	}
	return changed
}
