package converter

import (
	"log/slog"
	"time"
)

// EventType represents a lifecycle phase of a conversion run
type EventType string

const (
	EventStageStart EventType = "stage_start"
	EventStageEnd   EventType = "stage_end"
)

// Event is emitted around every pipeline stage
type Event struct {
	Type      EventType
	RunID     string
	Stage     string
	Timestamp time.Time
	Duration  time.Duration // set on stage_end
	Err       error         // set on stage_end when the stage failed
}

// Observer receives pipeline events
type Observer interface {
	OnEvent(event Event)
}

// LoggingObserver logs every event at debug level
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer; nil uses slog.Default()
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements Observer
func (lo *LoggingObserver) OnEvent(event Event) {
	attrs := []any{
		"event", event.Type,
		"run_id", event.RunID,
		"stage", event.Stage,
	}
	if event.Type == EventStageEnd {
		attrs = append(attrs, "duration", event.Duration)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err)
	}
	lo.logger.Debug("pipeline_lifecycle", attrs...)
}

// AddObserver registers an observer for pipeline events
func (c *Converter) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// RemoveObserver unregisters an observer
func (c *Converter) RemoveObserver(o Observer) {
	for i, obs := range c.observers {
		if obs == o {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

func (c *Converter) notify(event Event) {
	for _, o := range c.observers {
		o.OnEvent(event)
	}
}
