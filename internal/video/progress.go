package video

import (
	"strconv"
	"strings"
	"time"
)

// Progress is one FFmpeg progress report, parsed from the key=value blocks
// the encoder writes to pipe:1.
type Progress struct {
	// OutTime is how much of the output has been encoded.
	OutTime time.Duration
	// Speed is the encoder's realtime factor, e.g. "12.3x".
	Speed string
	// Done is true for the final report of a run.
	Done bool
}

// progressState accumulates key=value lines until a "progress=" line closes
// the block, then emits the assembled report.
type progressState struct {
	current Progress
	emit    func(Progress)
}

func (p *progressState) consume(line string) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch key {
	case "out_time_us":
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.current.OutTime = time.Duration(us) * time.Microsecond
		}
	case "speed":
		p.current.Speed = value
	case "progress":
		p.current.Done = value == "end"
		if p.emit != nil {
			p.emit(p.current)
		}
	}
}
