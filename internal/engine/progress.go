package engine

import (
	"strconv"
	"strings"
	"time"
)

// Progress is one snapshot of a running conversion.
type Progress struct {
	Input    string
	OutTime  time.Duration
	Duration time.Duration
	// Percent is -1 when the media duration is unknown.
	Percent float64
	Speed   string
	Done    bool
}

// progressParser accumulates "-progress pipe:1" blocks. Each block ends with
// a progress=continue or progress=end line.
type progressParser struct {
	duration time.Duration
	current  Progress
}

func newProgressParser(input string, duration time.Duration) *progressParser {
	return &progressParser{
		duration: duration,
		current:  Progress{Input: input, Duration: duration, Percent: -1},
	}
}

// feed consumes one stdout line and returns a snapshot when a block completes.
func (p *progressParser) feed(line string) (Progress, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return Progress{}, false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "out_time":
		if d, ok := ParseClock(value); ok {
			p.current.OutTime = d
		}
	case "out_time_us", "out_time_ms":
		// ffmpeg reports microseconds under both keys.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.current.OutTime = time.Duration(us) * time.Microsecond
		}
	case "speed":
		p.current.Speed = value
	case "progress":
		p.current.Done = value == "end"
		p.current.Percent = percent(p.current.OutTime, p.duration)
		if p.current.Done && p.duration > 0 {
			p.current.Percent = 100
		}
		return p.current, true
	}
	return Progress{}, false
}

func percent(outTime, duration time.Duration) float64 {
	if duration <= 0 {
		return -1
	}
	pct := float64(outTime) / float64(duration) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// ParseClock parses ffmpeg's HH:MM:SS.micro timestamps.
func ParseClock(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "-") {
		return 0, false
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	return total + time.Duration(seconds*float64(time.Second)), true
}
