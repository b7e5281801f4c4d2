package profile

import "sort"

// Collection maps category to profile name to profile.
type Collection map[Category]map[string]Profile

// Clone returns a deep copy of c.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for category, profiles := range c {
		copied := make(map[string]Profile, len(profiles))
		for name, p := range profiles {
			copied[name] = p.Clone()
		}
		out[category] = copied
	}
	return out
}

// Names returns the sorted profile names in category.
func (c Collection) Names(category Category) []string {
	names := make([]string, 0, len(c[category]))
	for name := range c[category] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Migrate brings legacy records up to the current layout and returns the
// number of profiles it changed. Video profiles gain a speed control
// (inherited from the audio speed when present) and their audio speed is
// forced to match; audio profiles gain a "1x" audio speed. Running Migrate on
// its own output changes nothing.
func (c Collection) Migrate() int {
	changed := 0
	for name, p := range c[CategoryVideo] {
		if migrateVideo(&p) {
			c[CategoryVideo][name] = p
			changed++
		}
	}
	for name, p := range c[CategoryAudio] {
		if p.Audio != nil && !p.Audio.AudioSpeed.IsSet() {
			p.Audio.AudioSpeed = DefaultSpeed
			c[CategoryAudio][name] = p
			changed++
		}
	}
	return changed
}

func migrateVideo(p *Profile) bool {
	if p.Video == nil {
		return false
	}
	changed := false
	if !p.Video.SpeedControl.IsSet() {
		speed := DefaultSpeed
		if p.Audio != nil && p.Audio.AudioSpeed.IsSet() {
			speed = p.Audio.AudioSpeed
		}
		p.Video.SpeedControl = speed
		changed = true
	}
	if p.Audio != nil && p.Audio.AudioSpeed != p.Video.SpeedControl {
		p.Audio.AudioSpeed = p.Video.SpeedControl
		changed = true
	}
	return changed
}

// normalize applies the synchronization rules to a profile about to be
// stored: the audio speed of a video profile mirrors its speed control and
// absent speeds default to "1x".
func normalize(category Category, p *Profile) {
	switch category {
	case CategoryVideo:
		if p.Video != nil && !p.Video.SpeedControl.IsSet() {
			p.Video.SpeedControl = DefaultSpeed
		}
		if p.Video != nil && p.Audio != nil {
			p.Audio.AudioSpeed = p.Video.SpeedControl
		}
	case CategoryAudio:
		if p.Audio != nil && !p.Audio.AudioSpeed.IsSet() {
			p.Audio.AudioSpeed = DefaultSpeed
		}
	}
}
