package channel

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// StatusLabel is the badge text and color for a status.
type StatusLabel struct {
	Text   string `json:"text"`
	Color  string `json:"color"`
	Detail string `json:"detail,omitempty"`
}

// LabelForStatus labels status; a dormant channel also shows its expected wake-up time.
func LabelForStatus(status Status, awakeTime int64) StatusLabel {
	switch status {
	case StatusEnabled:
		return StatusLabel{Text: "Enabled", Color: "green"}
	case StatusManuallyDisabled:
		return StatusLabel{Text: "Disabled", Color: "red", Detail: "disabled manually"}
	case StatusAutoDisabled:
		return StatusLabel{Text: "Disabled", Color: "yellow", Detail: "disabled automatically"}
	case StatusDormant:
		return StatusLabel{Text: "Dormant", Color: "pink", Detail: "expected wake-up: " + FormatTimestamp(awakeTime)}
	case StatusPendingActivation:
		return StatusLabel{Text: "Pending", Color: "blue", Detail: "activated when available channels drop below the restock threshold"}
	default:
		return StatusLabel{Text: "Unknown status", Color: "grey"}
	}
}

// LatencyBand buckets a measured response time for coloring.
type LatencyBand string

const (
	LatencyUntested LatencyBand = "untested"
	LatencyFast     LatencyBand = "fast"
	LatencyNormal   LatencyBand = "normal"
	LatencySlow     LatencyBand = "slow"
	LatencyVerySlow LatencyBand = "very_slow"
)

var latencyColors = map[LatencyBand]string{
	LatencyUntested: "grey",
	LatencyFast:     "green",
	LatencyNormal:   "olive",
	LatencySlow:     "yellow",
	LatencyVerySlow: "red",
}

// BandForResponseTime maps milliseconds to a band. Zero means untested.
func BandForResponseTime(ms int) LatencyBand {
	switch {
	case ms == 0:
		return LatencyUntested
	case ms <= 1000:
		return LatencyFast
	case ms <= 3000:
		return LatencyNormal
	case ms <= 5000:
		return LatencySlow
	default:
		return LatencyVerySlow
	}
}

// Color is the display color of the band.
func (b LatencyBand) Color() string { return latencyColors[b] }

// FormatResponseTime renders ms as seconds, or "untested".
func FormatResponseTime(ms int) string {
	if ms == 0 {
		return "untested"
	}
	return fmt.Sprintf("%.2f s", float64(ms)/1000)
}

// FormatBalance renders balance in the currency of the channel type.
// Types without balance support render as "unsupported".
func FormatBalance(channelType int, balance float64) string {
	switch channelType {
	case TypeOpenAI, TypeCustom:
		return fmt.Sprintf("$%.2f", balance)
	case TypeCloseAI, TypeAPI2GPT, TypeDeepSeek, TypeSiliconFlow:
		return fmt.Sprintf("¥%.2f", balance)
	case TypeOpenAISB:
		return fmt.Sprintf("¥%.2f", balance/10000)
	case TypeAIProxy, TypeAIGC2D:
		return FormatNumber(balance)
	default:
		return "unsupported"
	}
}

// SupportsBalance reports whether refresh-balance makes sense for the type.
func SupportsBalance(channelType int) bool {
	return FormatBalance(channelType, 0) != "unsupported"
}

// FormatNumber abbreviates large quantities: 1234567 -> 1.2M.
func FormatNumber(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e9:
		return trimZero(fmt.Sprintf("%.1f", n/1e9)) + "B"
	case abs >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", n/1e6)) + "M"
	case abs >= 1e4:
		return trimZero(fmt.Sprintf("%.1f", n/1e3)) + "k"
	default:
		return trimZero(fmt.Sprintf("%.2f", n))
	}
}

func trimZero(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatTimestamp renders unix seconds in local time; 0 renders as "never".
func FormatTimestamp(ts int64) string {
	if ts == 0 {
		return "never"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
}

// Groups splits the comma-joined group tags.
func Groups(group string) []string {
	return SplitModels(group)
}
