package upload

import (
	"RecipeCards-Backend/domain"
	"bytes"
	"encoding/json"
	"log"
	"strings"
)

// framePrefix marks a payload line in the AI stream's line protocol.
const framePrefix = "data: "

// FrameParser splits an arbitrarily-chunked byte stream into decoded
// events. Network chunks may cut a line anywhere, so the tail fragment
// after the last newline is carried over into the next Feed call.
type FrameParser struct {
	buf []byte
}

func NewFrameParser() *FrameParser {
	return &FrameParser{}
}

// Feed appends a chunk and returns every event completed by it, in
// arrival order.
func (p *FrameParser) Feed(chunk []byte) []domain.StreamEvent {
	p.buf = append(p.buf, chunk...)

	lines := bytes.Split(p.buf, []byte("\n"))
	p.buf = lines[len(lines)-1]

	var events []domain.StreamEvent
	for _, line := range lines[:len(lines)-1] {
		if event, ok := decodeFrame(line); ok {
			events = append(events, event)
		}
	}
	return events
}

// Flush gives the residual buffer one final decode attempt. The producer
// may omit the trailing newline on its last event.
func (p *FrameParser) Flush() (domain.StreamEvent, bool) {
	line := p.buf
	p.buf = nil
	return decodeFrame(line)
}

// decodeFrame decodes one candidate line. Lines without the frame prefix
// and blank payloads are skipped; a payload that fails to parse is logged
// and dropped so one bad frame never aborts the stream.
func decodeFrame(line []byte) (domain.StreamEvent, bool) {
	text := string(line)
	if !strings.HasPrefix(text, framePrefix) {
		return domain.StreamEvent{}, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(text, framePrefix))
	if payload == "" {
		return domain.StreamEvent{}, false
	}

	var event domain.StreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("Failed to parse stream frame: %q: %v", payload, err)
		return domain.StreamEvent{}, false
	}

	event.Raw = json.RawMessage(payload)
	return event, true
}
