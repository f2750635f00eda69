// Package transcript loads feature-annotated segments produced by the
// upstream extraction toolchain.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/reelplan/reelplan/internal/types"
)

type Adapter struct {
	path string
	log  zerolog.Logger
}

func New(path string, log zerolog.Logger) *Adapter {
	return &Adapter{path: path, log: log}
}

type document struct {
	SourceDuration float64         `json:"source_duration"`
	Segments       []types.Segment `json:"segments"`
}

// Load reads the segments document. Malformed segments (empty id,
// end <= start) are skipped with a warning; one bad segment never
// aborts the run.
func (a *Adapter) Load(ctx context.Context) ([]types.Segment, float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	b, err := os.ReadFile(a.path)
	if err != nil {
		return nil, 0, fmt.Errorf("read segments: %w", err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, 0, fmt.Errorf("parse segments: %w", err)
	}

	out := make([]types.Segment, 0, len(doc.Segments))
	for _, s := range doc.Segments {
		if !s.Valid() {
			a.log.Warn().Str("segment", s.ID).Float64("start", s.Start).Float64("end", s.End).
				Msg("skipping malformed segment")
			continue
		}
		if s.Duration == 0 {
			s.Duration = s.End - s.Start
		}
		out = append(out, s)
	}

	dur := doc.SourceDuration
	if dur == 0 && len(out) > 0 {
		dur = out[len(out)-1].End
	}
	return out, dur, nil
}
