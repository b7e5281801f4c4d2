package profile

import (
	"errors"

	"mediaforge/internal/schema"
)

// Validate checks a candidate profile against the schema. It returns nil for
// a valid profile and a *ValidationError naming the first offending field
// otherwise. Parameters without a matching option list are accepted.
func Validate(s schema.Schema, category Category, p Profile) error {
	if !s.Contains(schema.Containers, p.Container) {
		return &ValidationError{Category: category, Field: "container", Value: p.Container, Reason: "not a registered container"}
	}

	switch category {
	case CategoryVideo:
		if p.Video == nil {
			return &ValidationError{Category: category, Field: "video", Reason: "video profiles require a video section"}
		}
		speed := DefaultSpeed
		if p.Video.SpeedControl.IsSet() {
			speed = p.Video.SpeedControl
		}
		if !s.Contains(schema.SpeedControls, string(speed)) {
			return &ValidationError{Category: category, Field: "video.speed_control", Value: string(speed), Reason: "not a registered speed control"}
		}
		for _, param := range p.Video.Params() {
			if param.Name == "speed_control" {
				continue
			}
			if err := checkParam(s, category, schema.SectionVideo, param); err != nil {
				return err
			}
		}
		if p.Audio != nil {
			for _, param := range p.Audio.Params() {
				// audio_speed mirrors speed_control, validated above.
				if param.Name == "audio_speed" {
					continue
				}
				if err := checkParam(s, category, schema.SectionAudio, param); err != nil {
					return err
				}
			}
		}
	case CategoryAudio:
		if p.Video != nil {
			return &ValidationError{Category: category, Field: "video", Reason: "audio profiles cannot carry a video section"}
		}
		if p.Audio != nil {
			for _, param := range p.Audio.Params() {
				if param.Name == "audio_speed" {
					if !s.Contains(schema.AudioSpeeds, string(param.Value)) {
						return &ValidationError{Category: category, Field: "audio.audio_speed", Value: string(param.Value), Reason: "not a registered audio speed"}
					}
					continue
				}
				if err := checkParam(s, category, schema.SectionAudio, param); err != nil {
					return err
				}
			}
		}
	default:
		return &ValidationError{Category: category, Field: "category", Value: string(category), Reason: "unknown category"}
	}
	return nil
}

func checkParam(s schema.Schema, category Category, sectionName string, param Param) error {
	if param.Value.IsCopy() {
		return nil
	}
	key := schema.ValidationKey(sectionName, param.Name)
	if !s.Has(key) {
		return nil
	}
	if s.Contains(key, string(param.Value)) {
		return nil
	}
	return &ValidationError{
		Category: category,
		Field:    sectionName + "." + param.Name,
		Value:    string(param.Value),
		Reason:   "not in " + key,
	}
}

// Check is the boolean form of Validate: it reports whether the profile is
// valid and, if not, a human-readable reason.
func Check(s schema.Schema, category Category, p Profile) (bool, string) {
	err := Validate(s, category, p)
	if err == nil {
		return true, ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return false, verr.Error()
	}
	return false, err.Error()
}
