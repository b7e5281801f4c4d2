package profile

import "mediaforge/internal/schema"

func audioSection(codec, bitrate, sampleRate, channels, speed Setting) *AudioSettings {
	return &AudioSettings{Codec: codec, Bitrate: bitrate, SampleRate: sampleRate, Channels: channels, AudioSpeed: speed}
}

func videoSection(resolution, bitrate, crf, preset string, speed Setting) *VideoSettings {
	return &VideoSettings{
		Codec:        "libx264",
		Resolution:   Setting(resolution),
		Bitrate:      Setting(bitrate),
		CRF:          Setting(crf),
		FPS:          "30",
		PixelFormat:  "yuv420p",
		GOP:          "60",
		Preset:       Setting(preset),
		Tune:         "film",
		SpeedControl: speed,
	}
}

// DefaultCollection returns the built-in profile set written on first run.
func DefaultCollection() Collection {
	return Collection{
		CategoryAudio: {
			"mp3_high":     {Container: "mp3", Audio: audioSection("libmp3lame", "320k", "44100", "2", "1x")},
			"aac_high":     {Container: "m4a", Audio: audioSection("aac", "256k", "48000", "2", "1x")},
			"double_speed": {Container: "mp3", Audio: audioSection("libmp3lame", "320k", "44100", "2", "2x")},
			"half_speed":   {Container: "mp3", Audio: audioSection("libmp3lame", "320k", "44100", "2", "0.5x")},
		},
		CategoryVideo: {
			"youtube_1080p": {
				Container: "mp4",
				Video:     videoSection("1920x1080", schema.Copy, "21", "slow", "1x"),
				Audio:     audioSection("aac", "128k", "48000", "2", "1x"),
			},
			"youtube_4k": {
				Container: "mp4",
				Video:     videoSection("3840x2160", schema.Copy, "18", "slow", "1x"),
				Audio:     audioSection("aac", "192k", "48000", "2", "1x"),
			},
			"h264_web_optimized": {
				Container: "mp4",
				Video:     videoSection("1920x1080", "2M", "23", "medium", "1x"),
				Audio:     audioSection("aac", "192k", "48000", "2", "1x"),
			},
			"fast_motion": {
				Container: "mp4",
				Video:     videoSection("1920x1080", "2M", "23", "medium", "2x"),
				Audio:     audioSection("aac", "192k", "48000", "2", "2x"),
			},
			"slow_motion": {
				Container: "mp4",
				Video:     videoSection("1920x1080", "2M", "23", "medium", "0.5x"),
				Audio:     audioSection("aac", "192k", "48000", "2", "0.5x"),
			},
			"passthrough_mkv": {
				Container: "mkv",
				Video: &VideoSettings{
					Codec: schema.Copy, Resolution: schema.Copy, Bitrate: schema.Copy, CRF: schema.Copy,
					FPS: schema.Copy, PixelFormat: schema.Copy, GOP: schema.Copy, Preset: schema.Copy,
					Tune: schema.Copy, SpeedControl: "1x",
				},
				Audio: audioSection(schema.Copy, schema.Copy, schema.Copy, schema.Copy, "1x"),
			},
		},
	}
}

// Template returns the starting point for a new profile in category.
// Unknown categories yield an empty profile.
func Template(category Category) Profile {
	switch category {
	case CategoryVideo:
		return Profile{
			Container: "mp4",
			Video:     videoSection("1920x1080", schema.Copy, "23", "medium", DefaultSpeed),
			Audio:     audioSection("aac", "192k", "48000", "2", DefaultSpeed),
		}
	case CategoryAudio:
		return Profile{
			Container: "mp3",
			Audio:     audioSection("libmp3lame", "192k", "44100", "2", DefaultSpeed),
		}
	}
	return Profile{}
}
