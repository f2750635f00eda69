// Package chatlog loads the per-second chat message histogram exported
// alongside a live-stream VOD.
package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/reelplan/reelplan/internal/types"
)

type Adapter struct {
	path string
}

// New returns a histogram source for path. An empty path means the
// recording simply has no chat; Histogram then returns an empty map.
func New(path string) *Adapter {
	return &Adapter{path: path}
}

func (a *Adapter) Histogram(ctx context.Context) (types.ChatHistogram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.path == "" {
		return types.ChatHistogram{}, nil
	}
	b, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("read chat histogram: %w", err)
	}

	// Keys are second offsets; JSON object keys are always strings.
	var raw map[string]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse chat histogram: %w", err)
	}
	hist := make(types.ChatHistogram, len(raw))
	for k, v := range raw {
		sec, err := strconv.Atoi(k)
		if err != nil || sec < 0 || v <= 0 {
			continue
		}
		hist[sec] = v
	}
	return hist, nil
}
