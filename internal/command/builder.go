package command

import (
	"fmt"
	"strings"

	"mediaforge/internal/profile"
	"mediaforge/internal/schema"
)

// Args builds the ffmpeg argument list converting input to output with p.
// Video settings apply only for the video category; a video request on a
// profile without a video section skips the video branch.
func Args(category profile.Category, p profile.Profile, input, output string) ([]string, error) {
	if _, err := profile.ParseCategory(string(category)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("input and output paths are required")
	}

	speed, err := ParseSpeed(p.Speed(category))
	if err != nil {
		return nil, err
	}
	changed := speed != 1

	args := make([]string, 0, 32)
	args = append(args, "-i", input)

	var videoFilters, audioFilters []string

	if category == profile.CategoryVideo && p.Video != nil {
		v := p.Video
		codec := codecOrCopy(v.Codec)
		if changed {
			videoFilters = append(videoFilters, PTSFilter(speed))
			if codec == schema.Copy {
				codec = schema.FallbackVideoCodec
			}
		}
		args = append(args, "-c:v", codec)
		if codec != schema.Copy {
			args = appendExplicit(args, "-b:v", v.Bitrate)
			args = appendExplicit(args, "-s", v.Resolution)
			args = appendExplicit(args, "-r", v.FPS)
			args = appendExplicit(args, "-pix_fmt", v.PixelFormat)
			args = appendExplicit(args, "-preset", v.Preset)
			args = appendExplicit(args, "-tune", v.Tune)
			args = appendExplicit(args, "-crf", v.CRF)
		}
	}

	if p.Audio != nil {
		a := p.Audio
		codec := codecOrCopy(a.Codec)
		if changed {
			if codec == schema.Copy {
				codec = schema.FallbackAudioCodec
			}
			chain, err := TempoFilter(speed)
			if err != nil {
				return nil, err
			}
			audioFilters = append(audioFilters, chain)
		}
		args = append(args, "-c:a", codec)
		if codec != schema.Copy {
			args = appendExplicit(args, "-b:a", a.Bitrate)
			args = appendExplicit(args, "-ar", a.SampleRate)
			args = appendExplicit(args, "-ac", a.Channels)
		}
	}

	if len(videoFilters) > 0 {
		args = append(args, "-filter:v", strings.Join(videoFilters, ","))
	}
	if len(audioFilters) > 0 {
		args = append(args, "-filter:a", strings.Join(audioFilters, ","))
	}
	return append(args, output), nil
}

func codecOrCopy(codec profile.Setting) string {
	if value, ok := codec.Explicit(); ok {
		return value
	}
	return schema.Copy
}

func appendExplicit(args []string, flag string, value profile.Setting) []string {
	if v, ok := value.Explicit(); ok {
		return append(args, flag, v)
	}
	return args
}

// Source resolves stored profiles by category and name.
type Source interface {
	Get(category profile.Category, name string) (profile.Profile, error)
}

// Builder generates argument lists for profiles held in a Source.
type Builder struct {
	source Source
}

// NewBuilder returns a Builder reading profiles from source.
func NewBuilder(source Source) *Builder {
	return &Builder{source: source}
}

// Build looks up the named profile and generates its argument list. A missing
// profile yields an error wrapping profile.ErrNotFound.
func (b *Builder) Build(category profile.Category, name, input, output string) ([]string, error) {
	p, err := b.source.Get(category, name)
	if err != nil {
		return nil, err
	}
	return Args(category, p, input, output)
}

// OutputExtension returns the file extension (without dot) a profile writes.
func OutputExtension(p profile.Profile) string {
	return strings.TrimPrefix(strings.TrimSpace(p.Container), ".")
}
