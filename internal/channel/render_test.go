package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		channelType int
		balance     float64
		want        string
	}{
		{TypeOpenAI, 12.346, "$12.35"},
		{TypeCustom, 1, "$1.00"},
		{TypeCloseAI, 3.5, "¥3.50"},
		{TypeOpenAISB, 25000, "¥2.50"},
		{TypeAIProxy, 1500000, "1.5M"},
		{TypeAIGC2D, 42, "42"},
		{TypeDeepSeek, 9.99, "¥9.99"},
		{TypeSiliconFlow, 0, "¥0.00"},
		{TypeAnthropic, 100, "unsupported"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBalance(tt.channelType, tt.balance), "type %d", tt.channelType)
	}
	assert.True(t, SupportsBalance(TypeOpenAI))
	assert.False(t, SupportsBalance(TypeGemini))
}

func TestBandForResponseTime(t *testing.T) {
	tests := []struct {
		ms   int
		want LatencyBand
	}{
		{0, LatencyUntested},
		{1, LatencyFast},
		{1000, LatencyFast},
		{1001, LatencyNormal},
		{3000, LatencyNormal},
		{5000, LatencySlow},
		{5001, LatencyVerySlow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandForResponseTime(tt.ms), "ms=%d", tt.ms)
	}
	assert.Equal(t, "grey", LatencyUntested.Color())
	assert.Equal(t, "untested", FormatResponseTime(0))
	assert.Equal(t, "1.23 s", FormatResponseTime(1230))
}

func TestLabelForStatus(t *testing.T) {
	assert.Equal(t, "Enabled", LabelForStatus(StatusEnabled, 0).Text)
	assert.Equal(t, "red", LabelForStatus(StatusManuallyDisabled, 0).Color)
	assert.Equal(t, "yellow", LabelForStatus(StatusAutoDisabled, 0).Color)
	assert.Contains(t, LabelForStatus(StatusDormant, 0).Detail, "never")
	assert.Equal(t, "Unknown status", LabelForStatus(Status(9), 0).Text)
}

func TestLabelForType(t *testing.T) {
	assert.Equal(t, "OpenAI", LabelForType(TypeOpenAI).Text)
	assert.Equal(t, "Unknown type", LabelForType(TypeUnknown).Text)
	assert.Equal(t, "999", LabelForType(999).Text)

	labels := TypeLabels()
	for i := 1; i < len(labels); i++ {
		assert.Less(t, labels[i-1].Value, labels[i].Value)
	}
}
