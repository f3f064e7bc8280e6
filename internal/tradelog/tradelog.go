package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var ist = time.FixedZone("IST", 19800)

// Entry is one executed order.
type Entry struct {
	Time       string
	Symbol     string
	Side       string
	OrderID    string
	Reason     string
	Qty        int
	Price      float64
	TakeProfit float64        `json:",omitempty"`
	StopLoss   float64        `json:",omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// DecisionEntry is one decision-cycle outcome.
type DecisionEntry struct {
	Time   string
	Symbol string
	State  string
	Reason string
	Fields map[string]any `json:",omitempty"`
}

type record struct {
	subdir  string
	payload any
}

// Journal appends JSONL records to daily files through a single background
// writer. Producers never block on file I/O: when the queue is full the
// record is dropped and counted.
type Journal struct {
	dir     string
	queue   chan record
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	dropped int64
}

// New starts the journal's writer goroutine. dir defaults to "logs" or
// TRADER_LOG_DIR when set.
func New(dir string, queueSize int) *Journal {
	if dir == "" {
		dir = "logs"
		if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
			dir = v
		}
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	j := &Journal{
		dir:   dir,
		queue: make(chan record, queueSize),
	}
	j.wg.Add(1)
	go j.writeLoop()
	return j
}

// Append queues a trade record. Fire and forget.
func (j *Journal) Append(e Entry) {
	e.Time = time.Now().In(ist).Format("2006-01-02 15:04:05")
	j.enqueue(record{subdir: "", payload: e})
}

// AppendDecision queues a decision record.
func (j *Journal) AppendDecision(e DecisionEntry) {
	e.Time = time.Now().In(ist).Format("2006-01-02 15:04:05")
	j.enqueue(record{subdir: "decisions", payload: e})
}

// Dropped returns how many records were discarded on a full queue.
func (j *Journal) Dropped() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Close drains the queue and stops the writer. Queued records are flushed
// before it returns.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	j.mu.Unlock()

	close(j.queue)
	j.wg.Wait()
}

func (j *Journal) enqueue(r record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		j.dropped++
		return
	}
	select {
	case j.queue <- r:
	default:
		j.dropped++
	}
}

func (j *Journal) writeLoop() {
	defer j.wg.Done()
	for r := range j.queue {
		j.write(r)
	}
}

func (j *Journal) write(r record) {
	day := time.Now().In(ist).Format("2006-01-02")
	p := filepath.Join(j.dir, r.subdir, day+".txt")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	b, err := json.Marshal(r.payload)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(f, string(b))
}

// CompressOlder gzips journal files older than retentionDays.
func (j *Journal) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e := os.Stat(gz); e == nil {
			_ = os.Remove(p)
			return nil
		}
		compressFile(p, gz)
		return nil
	})
}

func compressFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err == nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(src)
		return
	}
	_ = gw.Close()
	_ = out.Close()
}
