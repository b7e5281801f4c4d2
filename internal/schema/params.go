package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Section names used in "section.param" parameter paths.
const (
	SectionVideo = "video"
	SectionAudio = "audio"
)

// parameterOptions maps a "section.param" path to the option list offered to
// users when editing that parameter.
var parameterOptions = map[string]string{
	"video.codec":         VideoCodecs,
	"video.resolution":    Resolutions,
	"video.bitrate":       VideoBitrates,
	"video.crf":           CRFValues,
	"video.fps":           Framerates,
	"video.pixel_format":  PixelFormats,
	"video.gop":           GOPSizes,
	"video.preset":        Presets,
	"video.tune":          TuneOptions,
	"video.speed_control": SpeedControls,
	"audio.codec":         AudioCodecs,
	"audio.bitrate":       AudioBitrates,
	"audio.sample_rate":   SampleRates,
	"audio.channels":      ChannelLayouts,
	"audio.audio_speed":   AudioSpeeds,
}

// OptionKey returns the option list key for a parameter path. Paths outside
// the catalogue fall back to the "<section>_<param>s" convention.
func OptionKey(section, param string) string {
	if key, ok := parameterOptions[section+"."+param]; ok {
		return key
	}
	return fmt.Sprintf("%s_%ss", section, param)
}

// ValidationKey returns the schema key the profile validator consults for a
// section parameter. Only codecs are special-cased; every other parameter
// follows the "<section>_<param>s" rule and is accepted when no such list
// exists.
func ValidationKey(section, param string) string {
	if section == SectionAudio && param == "codec" {
		return AudioCodecs
	}
	return fmt.Sprintf("%s_%ss", section, param)
}

// ParameterOptions returns the option list for a parameter path.
func (s Schema) ParameterOptions(section, param string) []string {
	values, _ := s.Options(OptionKey(section, param))
	return values
}

// IsSpeedKey reports whether key names a multiplier list that never carries
// the copy sentinel.
func IsSpeedKey(key string) bool {
	return key == SpeedControls || key == AudioSpeeds
}

var customResolution = regexp.MustCompile(`^[1-9][0-9]*x[1-9][0-9]*$`)

// Allows reports whether value is acceptable for the option list under key.
// Resolution lists that advertise a "custom" entry also accept any WIDTHxHEIGHT
// value.
func (s Schema) Allows(key, value string) bool {
	if s.Contains(key, value) {
		return true
	}
	if key != Resolutions || !customResolution.MatchString(value) {
		return false
	}
	for _, option := range s[key] {
		if strings.HasPrefix(option, "custom") {
			return true
		}
	}
	return false
}
