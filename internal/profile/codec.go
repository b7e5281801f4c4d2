package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type profileJSON struct {
	Container string         `json:"container"`
	Video     *VideoSettings `json:"video,omitempty"`
	Audio     *AudioSettings `json:"audio,omitempty"`
}

// MarshalJSON encodes the profile record in the on-disk layout.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(profileJSON(p))
}

// UnmarshalJSON decodes a profile record.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw profileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile(raw)
	return nil
}

// MarshalJSON encodes present parameters, extras included.
func (v *VideoSettings) MarshalJSON() ([]byte, error) { return marshalSection(v) }

// UnmarshalJSON decodes a video section, keeping unknown keys in Extra.
func (v *VideoSettings) UnmarshalJSON(data []byte) error { return unmarshalSection(v, data) }

// MarshalJSON encodes present parameters, extras included.
func (a *AudioSettings) MarshalJSON() ([]byte, error) { return marshalSection(a) }

// UnmarshalJSON decodes an audio section, keeping unknown keys in Extra.
func (a *AudioSettings) UnmarshalJSON(data []byte) error { return unmarshalSection(a, data) }

func marshalSection(s section) ([]byte, error) {
	out := make(map[string]string)
	for _, param := range listParams(s) {
		out[param.Name] = string(param.Value)
	}
	return json.Marshal(out)
}

func unmarshalSection(s section, data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		text, ok, err := scalarText(value)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", key, err)
		}
		if !ok {
			continue
		}
		if setParam(s, key, Setting(text)) {
			continue
		}
		extra := s.extra()
		if *extra == nil {
			*extra = make(map[string]string)
		}
		(*extra)[key] = text
	}
	return nil
}

// scalarText converts a JSON scalar to its string form. Hand-edited files
// sometimes carry numbers (e.g. "crf": 23) where strings are expected.
func scalarText(raw json.RawMessage) (string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false, nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '{', '[':
		return "", false, fmt.Errorf("expected scalar value, got %s", trimmed)
	default:
		return string(trimmed), true, nil
	}
}
