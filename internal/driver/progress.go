package driver

import "time"

// Stage describes a high-level analysis phase.
type Stage string

const (
	// StageDecode is the dump decoding stage.
	StageDecode Stage = "decode"
	// StageBuild is the graph construction stage.
	StageBuild Stage = "build"
	// StagePropagate is the annotation propagation stage.
	StagePropagate Stage = "propagate"
	// StageCheck is the call-site checking stage.
	StageCheck Stage = "check"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a dump file (or for the whole run when File is
// empty — the build/propagate/check phases are global).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
