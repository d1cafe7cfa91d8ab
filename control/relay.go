// Package control bridges the evaluator to the outside world. Relay is
// adapted from the teacher's control/listen.go Listen type: the same
// mutex-guarded "target + running state" shape, pointed at the
// visualization boundary (spec.md §6) instead of a live MIDI input
// device.
package control

import (
	"sync"

	"github.com/mzacho/musicdsl/core"
	"github.com/mzacho/musicdsl/notify"
)

// Broadcaster is anything that can fan a JSON payload out to listeners;
// transport.Hub implements it over websockets.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Relay implements eval.PrintSink: every Print'd MusicResult is exported
// to JSON and handed to the transport, provided the relay is running;
// plain text goes straight to the diagnostic stream. Mirrors Listen's
// mutex-guarded isRunning toggle from control/listen.go.
type Relay struct {
	mutex     *sync.RWMutex
	isRunning bool
	transport Broadcaster
	last      core.MusicResult
}

func NewRelay(transport Broadcaster) *Relay {
	return &Relay{
		mutex:     new(sync.RWMutex),
		transport: transport,
	}
}

// Start enables forwarding to the transport; Music calls before Start
// (or after Stop) still record Last but are not broadcast.
func (r *Relay) Start() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.isRunning = true
}

func (r *Relay) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.isRunning = false
}

func (r *Relay) IsRunning() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.isRunning
}

// Last returns the most recently Print'd MusicResult.
func (r *Relay) Last() core.MusicResult {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.last
}

// Music implements eval.PrintSink.
func (r *Relay) Music(result core.MusicResult) {
	r.mutex.Lock()
	r.last = result
	running := r.isRunning
	r.mutex.Unlock()

	notify.Debugf("control.relay print %d event(s)", len(result.Events))
	if !running || r.transport == nil {
		return
	}
	payload, err := core.ExportJSON(result)
	if err != nil {
		notify.Print(notify.Error(err))
		return
	}
	r.transport.Broadcast(payload)
}

// Text implements eval.PrintSink for non-MusicResult print values.
func (r *Relay) Text(s string) {
	notify.Print(notify.Info(s))
}
