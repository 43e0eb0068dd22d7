package recorder

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yanun0323/errors"

	"gxcoin/internal/codec"
	"gxcoin/internal/schema"
)

// ReaderOptions controls record decoding.
type ReaderOptions struct {
	DisableChecksum bool
	MaxPayloadSize  int
}

// Reader decodes journal records sequentially from one segment.
type Reader struct {
	r         *bufio.Reader
	opts      ReaderOptions
	headerBuf []byte
	payload   []byte
}

// NewReader wraps an io.Reader with journal decoding.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	return &Reader{
		r:         bufio.NewReader(r),
		opts:      opts,
		headerBuf: make([]byte, recordHeaderSize),
	}
}

// Next returns the next event. It returns io.EOF at a clean segment end.
func (r *Reader) Next() (schema.Event, error) {
	n, err := io.ReadFull(r.r, r.headerBuf)
	if err != nil {
		if err == io.EOF && n == 0 {
			return schema.Event{}, io.EOF
		}
		return schema.Event{}, err
	}

	header, payloadLen, err := decodeRecordHeader(r.headerBuf)
	if err != nil {
		return schema.Event{}, err
	}
	if r.opts.MaxPayloadSize > 0 && payloadLen > uint32(r.opts.MaxPayloadSize) {
		return schema.Event{}, ErrPayloadTooLarge
	}

	if cap(r.payload) < int(payloadLen) {
		r.payload = make([]byte, payloadLen)
	}
	r.payload = r.payload[:payloadLen]
	if payloadLen > 0 {
		if _, err := io.ReadFull(r.r, r.payload); err != nil {
			return schema.Event{}, err
		}
	}

	var checksumBuf [recordChecksumSize]byte
	if _, err := io.ReadFull(r.r, checksumBuf[:]); err != nil {
		return schema.Event{}, err
	}
	if !r.opts.DisableChecksum {
		expected := binary.LittleEndian.Uint32(checksumBuf[:])
		if checksum(r.headerBuf, r.payload) != expected {
			return schema.Event{}, ErrChecksumMismatch
		}
	}

	return codec.DecodeEvent(header, r.payload)
}

// Segments lists the journal segment files in dir, oldest first. Segment
// names sort chronologically by construction.
func Segments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read journal dir")
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".wal") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Replay streams every event in dir's segments, oldest first, into visit.
// A torn record at the tail of the newest segment ends the replay cleanly;
// corruption anywhere else is returned as an error.
func Replay(dir string, opts ReaderOptions, visit func(schema.Event) error) error {
	paths, err := Segments(dir)
	if err != nil {
		return err
	}
	for i, path := range paths {
		last := i == len(paths)-1
		if err := replaySegment(path, opts, last, visit); err != nil {
			return err
		}
	}
	return nil
}

func replaySegment(path string, opts ReaderOptions, tolerateTornTail bool, visit func(schema.Event) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open journal segment")
	}
	defer file.Close()

	r := NewReader(file, opts)
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if tolerateTornTail && tornTail(err) {
				return nil
			}
			return errors.Wrap(err, path)
		}
		if err := visit(ev); err != nil {
			return err
		}
	}
}

func tornTail(err error) bool {
	return err == io.ErrUnexpectedEOF || err == ErrChecksumMismatch
}
