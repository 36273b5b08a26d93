package snss

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// Writer encodes commands into a session-state log.
type Writer struct {
	w io.Writer
}

// NewWriter writes the log header and returns a Writer for the records.
func NewWriter(w io.Writer, version int32) (*Writer, error) {
	var buf [headerSize]byte
	copy(buf[:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(version))
	if _, err := w.Write(buf[:]); err != nil {
		return nil, fmt.Errorf("snss: write header: %w", err)
	}
	return &Writer{w: w}, nil
}

// Write encodes one command. The length prefix is derived from the payload.
func (w *Writer) Write(cmd Command) error {
	if len(cmd.Payload) > MaxPayload {
		return types.NewError(types.CodeValidation, fmt.Sprintf("command %d payload of %d bytes exceeds %d", cmd.ID, len(cmd.Payload), MaxPayload), nil)
	}
	buf := make([]byte, prefixSize+idSize+len(cmd.Payload))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(cmd.Payload)+idSize))
	binary.LittleEndian.PutUint16(buf[2:4], cmd.ID)
	copy(buf[4:], cmd.Payload)
	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("snss: write command %d: %w", cmd.ID, err)
	}
	return nil
}
