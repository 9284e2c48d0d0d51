package binarylog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/BullionBear/depthkeeper/internal/queue"
)

// rotatingWriter appends msgpack-encoded records to <dir>/<UTC hour>.msgpack,
// atomically switching to a new file handle when the hour rolls over.
// msgpack is self-delimiting so records need no length prefix; every write
// is flushed immediately.
type rotatingWriter struct {
	mu   sync.Mutex
	dir  string
	hour string
	file *os.File
}

func newRotatingWriter(dir string) (*rotatingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &rotatingWriter{dir: dir}
	if err := w.rotate(utcHour()); err != nil {
		return nil, err
	}
	return w, nil
}

func utcHour() string {
	return time.Now().UTC().Format("2006-01-02T15")
}

func (w *rotatingWriter) rotate(hour string) error {
	if w.file != nil {
		w.file.Close()
	}
	f, err := os.OpenFile(filepath.Join(w.dir, hour+".msgpack"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.hour = hour
	return nil
}

func (w *rotatingWriter) writeRecord(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := utcHour()
	if hour != w.hour {
		if err := w.rotate(hour); err != nil {
			return err
		}
	}

	packed, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.file.Write(packed); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Writer persists depth snapshots and agg trades to separate rotated
// msgpack logs under <dataDir>/depth and <dataDir>/agg_trade. It is the
// writer process's terminal sink for records pulled off the queue.
type Writer struct {
	depth    *rotatingWriter
	aggTrade *rotatingWriter
}

func NewWriter(dataDir string) (*Writer, error) {
	depthWriter, err := newRotatingWriter(filepath.Join(dataDir, "depth"))
	if err != nil {
		return nil, err
	}
	aggTradeWriter, err := newRotatingWriter(filepath.Join(dataDir, "agg_trade"))
	if err != nil {
		depthWriter.Close()
		return nil, err
	}
	return &Writer{depth: depthWriter, aggTrade: aggTradeWriter}, nil
}

func (w *Writer) WriteSnapshot(snap queue.DepthRecord) error {
	return w.depth.writeRecord(snap)
}

func (w *Writer) WriteAggTrade(trade queue.AggTradeRecord) error {
	return w.aggTrade.writeRecord(trade)
}

func (w *Writer) Close() error {
	err1 := w.depth.Close()
	err2 := w.aggTrade.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
