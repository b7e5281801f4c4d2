package profile

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"mediaforge/internal/schema"
)

// Category selects whether a profile targets video or audio media.
type Category string

const (
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
)

// Categories lists the profile categories in display order.
func Categories() []Category {
	return []Category{CategoryAudio, CategoryVideo}
}

// ParseCategory validates a user-supplied category name.
func ParseCategory(value string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryVideo:
		return CategoryVideo, nil
	case CategoryAudio:
		return CategoryAudio, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, value)
	}
}

// Setting is a single tunable value. The zero value means the parameter is
// absent; schema.Copy means the stream parameter is passed through.
type Setting string

// IsCopy reports whether the setting is the pass-through sentinel.
func (s Setting) IsCopy() bool { return s == schema.Copy }

// IsSet reports whether the setting carries any value.
func (s Setting) IsSet() bool { return s != "" }

// Explicit returns the concrete value when the setting is neither absent nor
// copy.
func (s Setting) Explicit() (string, bool) {
	if !s.IsSet() || s.IsCopy() {
		return "", false
	}
	return string(s), true
}

func (s Setting) String() string { return string(s) }

// Param is a named setting inside a profile section.
type Param struct {
	Name  string
	Value Setting
}

type field struct {
	name string
	ptr  *Setting
}

// VideoSettings holds the video stream parameters of a profile. Extra keeps
// parameters the model does not know about so they survive a round trip.
type VideoSettings struct {
	Codec        Setting
	Resolution   Setting
	Bitrate      Setting
	CRF          Setting
	FPS          Setting
	PixelFormat  Setting
	GOP          Setting
	Preset       Setting
	Tune         Setting
	SpeedControl Setting
	Extra        map[string]string
}

func (v *VideoSettings) fields() []field {
	return []field{
		{"codec", &v.Codec},
		{"resolution", &v.Resolution},
		{"bitrate", &v.Bitrate},
		{"crf", &v.CRF},
		{"fps", &v.FPS},
		{"pixel_format", &v.PixelFormat},
		{"gop", &v.GOP},
		{"preset", &v.Preset},
		{"tune", &v.Tune},
		{"speed_control", &v.SpeedControl},
	}
}

// AudioSettings holds the audio stream parameters of a profile.
type AudioSettings struct {
	Codec      Setting
	Bitrate    Setting
	SampleRate Setting
	Channels   Setting
	AudioSpeed Setting
	Extra      map[string]string
}

func (a *AudioSettings) fields() []field {
	return []field{
		{"codec", &a.Codec},
		{"bitrate", &a.Bitrate},
		{"sample_rate", &a.SampleRate},
		{"channels", &a.Channels},
		{"audio_speed", &a.AudioSpeed},
	}
}

// VideoParams lists the modeled video parameter names in emission order.
var VideoParams = paramNames((&VideoSettings{}).fields())

// AudioParams lists the modeled audio parameter names in emission order.
var AudioParams = paramNames((&AudioSettings{}).fields())

func paramNames(fields []field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// section is the shared behaviour of VideoSettings and AudioSettings.
type section interface {
	fields() []field
	extra() *map[string]string
}

func (v *VideoSettings) extra() *map[string]string { return &v.Extra }
func (a *AudioSettings) extra() *map[string]string { return &a.Extra }

func getParam(s section, name string) (Setting, bool) {
	for _, f := range s.fields() {
		if f.name == name {
			return *f.ptr, true
		}
	}
	if value, ok := (*s.extra())[name]; ok {
		return Setting(value), true
	}
	return "", false
}

func setParam(s section, name string, value Setting) bool {
	for _, f := range s.fields() {
		if f.name == name {
			*f.ptr = value
			return true
		}
	}
	extra := s.extra()
	if _, ok := (*extra)[name]; ok {
		(*extra)[name] = string(value)
		return true
	}
	return false
}

func listParams(s section) []Param {
	fields := s.fields()
	params := make([]Param, 0, len(fields)+len(*s.extra()))
	for _, f := range fields {
		if f.ptr.IsSet() {
			params = append(params, Param{Name: f.name, Value: *f.ptr})
		}
	}
	extraKeys := make([]string, 0, len(*s.extra()))
	for key := range *s.extra() {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		params = append(params, Param{Name: key, Value: Setting((*s.extra())[key])})
	}
	return params
}

// Get returns a parameter by name, including unmodeled extras.
func (v *VideoSettings) Get(name string) (Setting, bool) { return getParam(v, name) }

// Set assigns a known parameter and reports whether the name was recognized.
func (v *VideoSettings) Set(name string, value Setting) bool { return setParam(v, name, value) }

// Params returns every present parameter: modeled ones first, extras sorted.
func (v *VideoSettings) Params() []Param { return listParams(v) }

// Clone returns a deep copy.
func (v *VideoSettings) Clone() *VideoSettings {
	if v == nil {
		return nil
	}
	out := *v
	out.Extra = maps.Clone(v.Extra)
	return &out
}

// Get returns a parameter by name, including unmodeled extras.
func (a *AudioSettings) Get(name string) (Setting, bool) { return getParam(a, name) }

// Set assigns a known parameter and reports whether the name was recognized.
func (a *AudioSettings) Set(name string, value Setting) bool { return setParam(a, name, value) }

// Params returns every present parameter: modeled ones first, extras sorted.
func (a *AudioSettings) Params() []Param { return listParams(a) }

// Clone returns a deep copy.
func (a *AudioSettings) Clone() *AudioSettings {
	if a == nil {
		return nil
	}
	out := *a
	out.Extra = maps.Clone(a.Extra)
	return &out
}

// Profile is a named bundle of conversion settings. The owning category is
// the tag: video profiles carry a Video section, audio profiles never do.
type Profile struct {
	Container string
	Video     *VideoSettings
	Audio     *AudioSettings
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	return Profile{
		Container: p.Container,
		Video:     p.Video.Clone(),
		Audio:     p.Audio.Clone(),
	}
}

// Speed returns the effective playback multiplier string for the category,
// defaulting to "1x".
func (p Profile) Speed(category Category) Setting {
	if category == CategoryVideo && p.Video != nil {
		if p.Video.SpeedControl.IsSet() {
			return p.Video.SpeedControl
		}
		return DefaultSpeed
	}
	if p.Audio != nil && p.Audio.AudioSpeed.IsSet() {
		return p.Audio.AudioSpeed
	}
	return DefaultSpeed
}

// DefaultSpeed is the identity playback multiplier.
const DefaultSpeed Setting = "1x"

// SplitParameterPath parses "section.param".
func SplitParameterPath(path string) (string, string, error) {
	section, param, ok := strings.Cut(strings.TrimSpace(path), ".")
	if !ok || section == "" || param == "" || strings.Contains(param, ".") {
		return "", "", fmt.Errorf("%w: %q (expected section.param)", ErrUnknownParameter, path)
	}
	return section, param, nil
}

// Lookup returns a parameter addressed by section and name.
func (p Profile) Lookup(sectionName, param string) (Setting, bool) {
	switch sectionName {
	case schema.SectionVideo:
		if p.Video == nil {
			return "", false
		}
		return p.Video.Get(param)
	case schema.SectionAudio:
		if p.Audio == nil {
			return "", false
		}
		return p.Audio.Get(param)
	}
	return "", false
}

// Assign sets a parameter addressed by section and name, creating the section
// when needed. Unknown parameter names are rejected.
func (p *Profile) Assign(sectionName, param string, value Setting) error {
	switch sectionName {
	case schema.SectionVideo:
		if p.Video == nil {
			p.Video = &VideoSettings{}
		}
		if !p.Video.Set(param, value) {
			return fmt.Errorf("%w: video.%s", ErrUnknownParameter, param)
		}
	case schema.SectionAudio:
		if p.Audio == nil {
			p.Audio = &AudioSettings{}
		}
		if !p.Audio.Set(param, value) {
			return fmt.Errorf("%w: audio.%s", ErrUnknownParameter, param)
		}
	default:
		return fmt.Errorf("%w: section %q", ErrUnknownParameter, sectionName)
	}
	return nil
}

// EditableParameters returns the parameters a user may edit per section for
// the category. Video profiles expose no audio speed because it mirrors the
// video speed control.
func EditableParameters(category Category) map[string][]string {
	switch category {
	case CategoryVideo:
		return map[string][]string{
			schema.SectionVideo: append([]string(nil), VideoParams...),
			schema.SectionAudio: {"codec", "bitrate", "sample_rate", "channels"},
		}
	case CategoryAudio:
		return map[string][]string{
			schema.SectionAudio: append([]string(nil), AudioParams...),
		}
	}
	return map[string][]string{}
}
