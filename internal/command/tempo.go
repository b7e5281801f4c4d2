package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"mediaforge/internal/profile"
)

// Bounds of a single atempo stage.
const (
	MinTempoStage = 0.5
	MaxTempoStage = 2.0
)

// ParseSpeed converts a multiplier such as "2x" or "0.5x" to a factor.
func ParseSpeed(value profile.Setting) (float64, error) {
	raw := strings.TrimSpace(string(value))
	if raw == "" {
		return 1, nil
	}
	speed, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(raw), "x"), 64)
	if err != nil || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return 0, fmt.Errorf("invalid speed %q", raw)
	}
	if speed <= 0 {
		return 0, fmt.Errorf("speed %q must be positive", raw)
	}
	return speed, nil
}

// TempoStages decomposes speed into atempo factors whose product is speed.
// Above 2 it emits 2.0 stages while halving the remainder; below 0.5 it emits
// 0.5 stages while doubling it. The remainder is always the last stage.
func TempoStages(speed float64) ([]float64, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("invalid tempo %v", speed)
	}
	var stages []float64
	remaining := speed
	for remaining > MaxTempoStage {
		stages = append(stages, MaxTempoStage)
		remaining /= 2
	}
	for remaining < MinTempoStage {
		stages = append(stages, MinTempoStage)
		remaining *= 2
	}
	return append(stages, remaining), nil
}

// TempoFilter renders the stages as a comma-joined atempo chain.
func TempoFilter(speed float64) (string, error) {
	stages, err := TempoStages(speed)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(stages))
	for i, stage := range stages {
		parts[i] = "atempo=" + formatFactor(stage)
	}
	return strings.Join(parts, ","), nil
}

// PTSFilter renders the video timestamp filter for speed.
func PTSFilter(speed float64) string {
	return "setpts=" + formatFactor(1/speed) + "*PTS"
}

// formatFactor prints the shortest exact decimal, always with a fractional
// part ("2.0", "0.5", "1.5").
func formatFactor(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
