// Package inference derives conversion profiles from probed reference media.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mediaforge/internal/media/ffprobe"
	"mediaforge/internal/profile"
	"mediaforge/internal/schema"
)

// ErrNoStreams reports a probe result with neither audio nor video.
var ErrNoStreams = errors.New("reference media has no audio or video streams")

// Store is the subset of profile.Store the inferrer writes through.
type Store interface {
	Schema() schema.Schema
	Add(category profile.Category, name string, p profile.Profile) error
}

// Infer builds a profile resembling the probed media. Video media yields a
// libx264 profile at the source resolution and frame rate; audio-only media
// yields an mp3-style audio profile. Encoder settings use fixed defaults.
func Infer(s schema.Schema, probed ffprobe.Result) (profile.Category, profile.Profile, error) {
	video, hasVideo := probed.FirstVideo()
	_, hasAudio := probed.FirstAudio()
	if !hasVideo && !hasAudio {
		return "", profile.Profile{}, ErrNoStreams
	}

	category := profile.CategoryAudio
	if hasVideo {
		category = profile.CategoryVideo
	}

	p := profile.Profile{Container: inferContainer(s, category, probed)}
	if hasVideo {
		resolution := video.Resolution()
		if resolution == "" {
			resolution = "1920x1080"
		}
		fps := formatRate(video.FrameRate())
		if fps == "" {
			fps = "30"
		}
		p.Video = &profile.VideoSettings{
			Codec:        schema.FallbackVideoCodec,
			Resolution:   profile.Setting(resolution),
			Bitrate:      schema.Copy,
			CRF:          "23",
			FPS:          profile.Setting(fps),
			PixelFormat:  "yuv420p",
			GOP:          "60",
			Preset:       "medium",
			Tune:         "film",
			SpeedControl: profile.DefaultSpeed,
		}
	}
	if hasAudio {
		codec := profile.Setting("libmp3lame")
		if category == profile.CategoryVideo {
			codec = schema.FallbackAudioCodec
		}
		p.Audio = &profile.AudioSettings{
			Codec:      codec,
			Bitrate:    "192k",
			SampleRate: "48000",
			Channels:   "2",
			AudioSpeed: profile.DefaultSpeed,
		}
	}
	return category, p, nil
}

func inferContainer(s schema.Schema, category profile.Category, probed ffprobe.Result) string {
	container := strings.ToLower(probed.PrimaryFormat())
	if s.Contains(schema.Containers, container) {
		return container
	}
	if category == profile.CategoryVideo {
		return "mp4"
	}
	return "m4a"
}

// Create infers a profile from probed media and stores it under name.
func Create(store Store, probed ffprobe.Result, name string) (profile.Category, profile.Profile, error) {
	category, p, err := Infer(store.Schema(), probed)
	if err != nil {
		return "", profile.Profile{}, err
	}
	if err := store.Add(category, name, p); err != nil {
		return "", profile.Profile{}, fmt.Errorf("store inferred profile: %w", err)
	}
	return category, p, nil
}

// CreateFromFile probes path and stores the inferred profile under name.
func CreateFromFile(ctx context.Context, prober ffprobe.Prober, store Store, path, name string) (profile.Category, profile.Profile, error) {
	probed, err := prober.Inspect(ctx, path)
	if err != nil {
		return "", profile.Profile{}, err
	}
	return Create(store, probed, name)
}

// Mirror describes the probed media as a profile reproducing its current
// parameters. Unknown values become "copy". The result is informational and
// is not validated; source codecs often fall outside the encoder lists.
func Mirror(probed ffprobe.Result) profile.Profile {
	container := probed.PrimaryFormat()
	if container == "" {
		container = "mp4"
	}
	p := profile.Profile{Container: container}
	if video, ok := probed.FirstVideo(); ok {
		p.Video = &profile.VideoSettings{
			Codec:        orCopy(video.CodecName),
			Resolution:   orCopy(video.Resolution()),
			Bitrate:      kbps(probed.BitRate()),
			CRF:          schema.Copy,
			FPS:          orCopy(formatRate(video.FrameRate())),
			PixelFormat:  orCopy(video.PixFmt),
			GOP:          schema.Copy,
			Preset:       "medium",
			Tune:         schema.Copy,
			SpeedControl: profile.DefaultSpeed,
		}
	}
	if audio, ok := probed.FirstAudio(); ok {
		channels := ""
		if audio.Channels > 0 {
			channels = strconv.Itoa(audio.Channels)
		}
		p.Audio = &profile.AudioSettings{
			Codec:      orCopy(audio.CodecName),
			Bitrate:    kbps(audio.StreamBitRate()),
			SampleRate: orCopy(audio.SampleRate),
			Channels:   orCopy(channels),
			AudioSpeed: profile.DefaultSpeed,
		}
	}
	return p
}

func orCopy(value string) profile.Setting {
	if strings.TrimSpace(value) == "" {
		return schema.Copy
	}
	return profile.Setting(strings.TrimSpace(value))
}

func kbps(bitsPerSecond int64) profile.Setting {
	if bitsPerSecond <= 0 {
		return schema.Copy
	}
	return profile.Setting(strconv.FormatInt(bitsPerSecond/1000, 10) + "k")
}

// formatRate renders a frame rate with at most three decimals, trimming
// trailing zeros: 25 -> "25", 30000/1001 -> "29.97".
func formatRate(fps float64) string {
	if fps <= 0 {
		return ""
	}
	s := strconv.FormatFloat(fps, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
