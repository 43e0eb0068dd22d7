package recorder

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"

	"gxcoin/internal/codec"
	"gxcoin/internal/schema"
)

var (
	ErrQueueFull      = errors.New("journal queue full")
	ErrClosed         = errors.New("journal writer closed")
	ErrNotStarted     = errors.New("journal writer not started")
	ErrAlreadyStarted = errors.New("journal writer already started")
)

// Writer appends events to journal segments from a buffered queue, keeping
// the publishing path non-blocking.
type Writer struct {
	cfg Config
	ch  chan schema.Event
	wg  sync.WaitGroup
	err atomic.Value

	started uint32
	closed  uint32
}

// NewWriter creates a journal writer and ensures the target directory
// exists.
func NewWriter(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create journal dir")
	}
	return &Writer{
		cfg: cfg,
		ch:  make(chan schema.Event, cfg.QueueSize),
	}, nil
}

// Start runs the writer loop in a new goroutine.
func (w *Writer) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&w.started, 0, 1) {
		return ErrAlreadyStarted
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	return nil
}

// Close stops the writer, drains the queue and flushes buffered data.
func (w *Writer) Close() error {
	if atomic.CompareAndSwapUint32(&w.closed, 0, 1) {
		close(w.ch)
	}
	w.wg.Wait()
	return w.Err()
}

// Err returns the first error observed by the writer, if any.
func (w *Writer) Err() error {
	if v := w.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// TryAppend enqueues an event without blocking.
func (w *Writer) TryAppend(ev schema.Event) error {
	if atomic.LoadUint32(&w.closed) != 0 {
		return ErrClosed
	}
	if atomic.LoadUint32(&w.started) == 0 {
		return ErrNotStarted
	}
	if err := w.Err(); err != nil {
		return err
	}
	select {
	case w.ch <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Writer) run(ctx context.Context) {
	var (
		seg         *segment
		segID       uint64
		headerBuf   = make([]byte, recordHeaderSize)
		payloadBuf  []byte
		checksumBuf [recordChecksumSize]byte
		flushC      <-chan time.Time
		syncC       <-chan time.Time
	)

	if w.cfg.FlushInterval > 0 {
		t := time.NewTicker(w.cfg.FlushInterval)
		defer t.Stop()
		flushC = t.C
	}
	if w.cfg.SyncInterval > 0 {
		t := time.NewTicker(w.cfg.SyncInterval)
		defer t.Stop()
		syncC = t.C
	}
	defer func() {
		if err := seg.close(); err != nil {
			w.setErr(err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.drain(&seg, &segID, headerBuf, &payloadBuf, &checksumBuf)
			return
		case ev, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.writeRecord(&seg, &segID, headerBuf, &payloadBuf, &checksumBuf, ev); err != nil {
				w.setErr(err)
				return
			}
		case <-flushC:
			if err := seg.flush(); err != nil {
				w.setErr(err)
				return
			}
		case <-syncC:
			if err := seg.sync(); err != nil {
				w.setErr(err)
				return
			}
		}
	}
}

func (w *Writer) drain(seg **segment, segID *uint64, headerBuf []byte, payloadBuf *[]byte, checksumBuf *[recordChecksumSize]byte) {
	for {
		select {
		case ev, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.writeRecord(seg, segID, headerBuf, payloadBuf, checksumBuf, ev); err != nil {
				w.setErr(err)
				return
			}
		default:
			return
		}
	}
}

func (w *Writer) writeRecord(seg **segment, segID *uint64, headerBuf []byte, payloadBuf *[]byte, checksumBuf *[recordChecksumSize]byte, ev schema.Event) error {
	payload, err := codec.EncodePayload((*payloadBuf)[:0], ev)
	if err != nil {
		return err
	}
	*payloadBuf = payload
	if uint64(len(payload)) > maxPayloadLen {
		return ErrPayloadTooLarge
	}

	recordSize := int64(recordHeaderSize + len(payload) + recordChecksumSize)
	if *seg == nil || (w.cfg.SegmentMaxBytes > 0 && (*seg).size+recordSize > w.cfg.SegmentMaxBytes) {
		if err := (*seg).close(); err != nil {
			return err
		}
		opened, err := w.openSegment(segID)
		if err != nil {
			return err
		}
		*seg = opened
	}

	encodeRecordHeader(headerBuf, ev.Header, len(payload))
	binary.LittleEndian.PutUint32(checksumBuf[:], checksum(headerBuf, payload))

	if _, err := (*seg).buf.Write(headerBuf); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := (*seg).buf.Write(payload); err != nil {
			return err
		}
	}
	if _, err := (*seg).buf.Write(checksumBuf[:]); err != nil {
		return err
	}
	(*seg).size += recordSize
	return nil
}

func (w *Writer) openSegment(segID *uint64) (*segment, error) {
	ts := time.Now().UTC().Format("20060102-150405")
	for {
		*segID = *segID + 1
		name := fmt.Sprintf("%s-%s-%06d.wal", w.cfg.FilePrefix, ts, *segID)
		path := filepath.Join(w.cfg.Dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return nil, errors.Wrap(err, "open journal segment")
		}
		return &segment{
			file: file,
			buf:  bufio.NewWriterSize(file, w.cfg.BufferSize),
		}, nil
	}
}

func (w *Writer) setErr(err error) {
	if err == nil || w.err.Load() != nil {
		return
	}
	w.err.Store(err)
}

type segment struct {
	file *os.File
	buf  *bufio.Writer
	size int64
}

func (s *segment) flush() error {
	if s == nil {
		return nil
	}
	return s.buf.Flush()
}

func (s *segment) sync() error {
	if s == nil {
		return nil
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *segment) close() error {
	if s == nil {
		return nil
	}
	if err := s.buf.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	if err := s.file.Sync(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
