package notice

import (
	"io"
	"sync"

	"channel-console/internal/interfaces"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// LogSink writes notices to a logrus logger. Errors log at warn level since
// they are already surfaced to the operator.
type LogSink struct {
	Logger *logrus.Logger
}

func (s LogSink) Deliver(n Notice) {
	entry := s.Logger.WithFields(logrus.Fields{
		"notice_id":    n.ID,
		"notice_level": string(n.Level),
	})
	switch n.Level {
	case interfaces.NoticeError, interfaces.NoticeWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}

// ConsoleSink prints notices to a terminal, colored by level.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink writes colored notices to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

var levelStyles = map[interfaces.NoticeLevel]*color.Color{
	interfaces.NoticeInfo:    color.New(color.FgCyan),
	interfaces.NoticeSuccess: color.New(color.FgGreen),
	interfaces.NoticeWarning: color.New(color.FgYellow),
	interfaces.NoticeError:   color.New(color.FgRed, color.Bold),
}

var levelTags = map[interfaces.NoticeLevel]string{
	interfaces.NoticeInfo:    "INF",
	interfaces.NoticeSuccess: "OK ",
	interfaces.NoticeWarning: "WRN",
	interfaces.NoticeError:   "ERR",
}

func (s *ConsoleSink) Deliver(n Notice) {
	style, ok := levelStyles[n.Level]
	if !ok {
		style = color.New(color.Reset)
	}
	tag, ok := levelTags[n.Level]
	if !ok {
		tag = "---"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = style.Fprint(s.w, tag)
	_, _ = io.WriteString(s.w, " "+n.Message+"\n")
}
