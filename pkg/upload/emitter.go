package upload

import (
	"bufio"
	"encoding/json"
)

// Emitter serializes outgoing events onto the open client response using
// the same line protocol the AI stream uses. Every event is flushed
// immediately; the mobile app renders progress live. A write or flush
// error means the client is gone and the relay must stop.
type Emitter struct {
	w          *bufio.Writer
	terminated bool
}

func NewEmitter(w *bufio.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) Emit(event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.write(payload)
}

// EmitRaw relays an upstream frame's payload untouched.
func (e *Emitter) EmitRaw(payload json.RawMessage) error {
	return e.write(payload)
}

// EmitTerminal writes a complete or error event and marks the stream
// finished. The relay guarantees exactly one terminal event per request.
func (e *Emitter) EmitTerminal(event interface{}) error {
	err := e.Emit(event)
	e.terminated = true
	return err
}

func (e *Emitter) Terminated() bool {
	return e.terminated
}

func (e *Emitter) write(payload []byte) error {
	if _, err := e.w.WriteString(framePrefix); err != nil {
		return err
	}
	if _, err := e.w.Write(payload); err != nil {
		return err
	}
	if _, err := e.w.WriteString("\n\n"); err != nil {
		return err
	}
	return e.w.Flush()
}
