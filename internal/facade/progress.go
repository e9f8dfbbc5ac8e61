package facade

import "time"

// Stage describes a phase of facade synthesis for one contract.
type Stage string

const (
	// StageTables builds the contract and seed doc-id tables.
	StageTables Stage = "tables"
	// StageResolve binds contract types to seed types.
	StageResolve Stage = "resolve"
	// StageRewrite rewrites the contract into a facade.
	StageRewrite Stage = "rewrite"
	// StageEmit encodes the facade.
	StageEmit Stage = "emit"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a contract (or for the whole run when Contract is empty).
type Event struct {
	Contract string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
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

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
