package snss

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// Reader decodes commands lazily from a session-state log. It is not
// restartable: each record is read from the underlying stream exactly once.
type Reader struct {
	r      *bufio.Reader
	header Header
	offset int64
	cmd    Command
	err    error
	done   bool
}

// NewReader consumes and validates the log header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var buf [headerSize]byte
	if n, err := io.ReadFull(br, buf[:]); err != nil {
		return nil, corrupt(fmt.Sprintf("short header: %d of %d bytes", n, headerSize), err)
	}
	if string(buf[:4]) != Magic {
		return nil, corrupt(fmt.Sprintf("bad signature %q", buf[:4]), nil)
	}
	return &Reader{
		r:      br,
		header: Header{Version: int32(binary.LittleEndian.Uint32(buf[4:8]))},
		offset: headerSize,
	}, nil
}

// Header returns the decoded log header.
func (r *Reader) Header() Header { return r.header }

// Next advances to the next command. It returns false at end of stream or on
// error; Err distinguishes the two.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}
	cmd, err := r.readCommand()
	if err != nil {
		r.done = true
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
		r.cmd = Command{}
		return false
	}
	r.cmd = cmd
	return true
}

// Command returns the command read by the last successful Next.
func (r *Reader) Command() Command { return r.cmd }

// Err returns the first decoding error, or nil after a clean end of stream.
func (r *Reader) Err() error { return r.err }

// All yields the remaining commands. A decoding error is yielded once as the
// final element.
func (r *Reader) All() iter.Seq2[Command, error] {
	return func(yield func(Command, error) bool) {
		for r.Next() {
			if !yield(r.Command(), nil) {
				return
			}
		}
		if err := r.Err(); err != nil {
			yield(Command{}, err)
		}
	}
}

func (r *Reader) readCommand() (Command, error) {
	start := r.offset
	var prefix [prefixSize]byte
	n, err := io.ReadFull(r.r, prefix[:])
	if err == io.EOF {
		return Command{}, io.EOF
	}
	if err != nil {
		return Command{}, corrupt(fmt.Sprintf("truncated length prefix at offset %d: %d of %d bytes", start, n, prefixSize), err)
	}
	r.offset += int64(n)

	length := binary.LittleEndian.Uint16(prefix[:])
	if length < idSize {
		return Command{}, corrupt(fmt.Sprintf("record at offset %d declares length %d, below the command id size", start, length), nil)
	}

	body := make([]byte, length)
	n, err = io.ReadFull(r.r, body)
	if err != nil {
		return Command{}, corrupt(fmt.Sprintf("record at offset %d declares %d bytes, only %d remain", start, length, n), err)
	}
	r.offset += int64(n)

	id := binary.LittleEndian.Uint16(body[:idSize])
	payload := body[idSize:]
	fields, ok := decodeFields(id, payload)
	if !ok {
		return Command{}, corrupt(fmt.Sprintf("command %d at offset %d has %d payload bytes, want at least %d", id, start, len(payload), tabWindowSize), nil)
	}
	return Command{ID: id, Length: length, Payload: payload, Fields: fields}, nil
}

func corrupt(msg string, cause error) error {
	if cause == io.EOF {
		cause = io.ErrUnexpectedEOF
	}
	return types.NewError(types.CodeCorruptSession, msg, cause)
}

// File is a Reader over an open session-state file.
type File struct {
	*Reader
	f *os.File
}

// Open opens path and validates its header. The caller must Close the File.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewError(types.CodeSessionUnavailable, "open "+path, err)
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{Reader: r, f: f}, nil
}

// Close releases the file handle.
func (f *File) Close() error {
	return f.f.Close()
}
