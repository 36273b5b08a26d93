// Package snss reads and writes browser session-state command logs.
//
// A log is an 8-byte header (the ASCII magic "SNSS" followed by a
// little-endian int32 version) and a sequence of records. Each record is a
// little-endian uint16 length L, a uint16 command id, and L-2 payload bytes.
// Only the set-tab-window command is interpreted; every other command is kept
// as opaque bytes so the log can be re-encoded byte for byte.
package snss

import "encoding/binary"

const (
	// Magic opens every session-state log.
	Magic = "SNSS"

	headerSize = 8
	prefixSize = 2 // length prefix
	idSize     = 2

	// MaxPayload is the largest payload a single record can frame.
	MaxPayload = 0xFFFF - idSize
)

// CommandSetTabWindow records that a tab belongs to a window.
const CommandSetTabWindow uint16 = 0

// Field names decoded from a set-tab-window payload.
const (
	FieldWindowID = "id"
	FieldTabIndex = "index"
)

const tabWindowSize = 8

// Header is the fixed log header.
type Header struct {
	Version int32
}

// Fields maps decoded payload field names to values.
type Fields map[string]any

// Command is one decoded record.
type Command struct {
	ID uint16
	// Length is the framing length prefix: len(Payload)+2.
	Length uint16
	// Payload is the raw record body following the command id.
	Payload []byte
	// Fields is nil for commands this package does not interpret.
	Fields Fields
}

// Uint32 returns a decoded uint32 field.
func (c Command) Uint32(name string) (uint32, bool) {
	v, ok := c.Fields[name]
	if !ok {
		return 0, false
	}
	u, ok := v.(uint32)
	return u, ok
}

// TabWindow returns the window ID and tab index of a set-tab-window command.
func (c Command) TabWindow() (window, index uint32, ok bool) {
	if c.ID != CommandSetTabWindow {
		return 0, 0, false
	}
	window, okW := c.Uint32(FieldWindowID)
	index, okI := c.Uint32(FieldTabIndex)
	return window, index, okW && okI
}

// NewTabWindow builds a set-tab-window command. trailing is appended after
// the window ID and tab index.
func NewTabWindow(window, index uint32, trailing []byte) Command {
	payload := make([]byte, tabWindowSize, tabWindowSize+len(trailing))
	binary.LittleEndian.PutUint32(payload[0:4], window)
	binary.LittleEndian.PutUint32(payload[4:8], index)
	payload = append(payload, trailing...)
	return Command{
		ID:      CommandSetTabWindow,
		Length:  uint16(len(payload) + idSize),
		Payload: payload,
		Fields:  Fields{FieldWindowID: window, FieldTabIndex: index},
	}
}

// NewOpaque builds a command whose payload is not interpreted.
func NewOpaque(id uint16, payload []byte) Command {
	return Command{ID: id, Length: uint16(len(payload) + idSize), Payload: payload}
}

func decodeFields(id uint16, payload []byte) (Fields, bool) {
	if id != CommandSetTabWindow {
		return nil, true
	}
	if len(payload) < tabWindowSize {
		return nil, false
	}
	return Fields{
		FieldWindowID: binary.LittleEndian.Uint32(payload[0:4]),
		FieldTabIndex: binary.LittleEndian.Uint32(payload[4:8]),
	}, true
}
