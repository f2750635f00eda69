package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reelplan/reelplan/internal/types"
)

func TestChatBurstScore_Buckets(t *testing.T) {
	tests := []struct {
		name string
		peak int
		want float64
	}{
		{"x15", 15, 1.00},
		{"x10", 10, 0.95},
		{"x7", 7, 0.85},
		{"x5", 5, 0.70},
		{"x3", 3, 0.50},
		{"x2", 2, 0.30},
		{"x1", 1, 0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No messages before the segment: baseline floors at 1, so
			// the peak value is the multiplier.
			hist := types.ChatHistogram{205: tt.peak}
			assert.Equal(t, tt.want, ChatBurstScore(hist, 200, 210))
		})
	}
}

func TestChatBurstScore_EmptyHistogram(t *testing.T) {
	assert.Equal(t, 0.0, ChatBurstScore(types.ChatHistogram{}, 0, 10))
	assert.Equal(t, 0.0, ChatBurstScore(nil, 0, 10))
}

func TestChatBurstScore_PeakExtension(t *testing.T) {
	// Reaction lands 6s after the segment ends; still counted.
	hist := types.ChatHistogram{216: 15}
	assert.Equal(t, 1.00, ChatBurstScore(hist, 200, 210))

	// Past the extension window it no longer counts.
	hist = types.ChatHistogram{221: 15}
	assert.Equal(t, 0.10, ChatBurstScore(hist, 200, 210))
}

func TestChatBurstScore_BaselineDampsPeak(t *testing.T) {
	hist := types.ChatHistogram{}
	// Busy chat before the segment: 5 msg/s baseline.
	for s := 20; s < 200; s++ {
		hist[s] = 5
	}
	hist[205] = 15
	// Multiplier 3, not 15.
	assert.Equal(t, 0.50, ChatBurstScore(hist, 200, 210))
}
