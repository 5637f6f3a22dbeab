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

var mu sync.Mutex

// Entry records one placed order.
type Entry struct {
	Time, Symbol, Side, OrderID string
	SecurityID                  string
	Qty                         int
	Price                       float64
	OrderType                   string
	AfterMarket                 bool
	Extra                       map[string]any `json:"extra,omitempty"`
}

// TurnEntry records one conversation turn and its outcome.
type TurnEntry struct {
	Time, Utterance, Outcome string
	Symbol                   string
	Extra                    map[string]any `json:"extra,omitempty"`
}

func logDir() string {
	if v := os.Getenv("LEDGER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}
func dailyFilepath(t time.Time) string {
	d := t.In(time.FixedZone("IST", 19800)).Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}
func turnsFilepath(t time.Time) string {
	d := t.In(time.FixedZone("IST", 19800)).Format("2006-01-02")
	return filepath.Join(logDir(), "turns", d+".txt")
}

// Append writes one order entry to the daily file.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().In(time.FixedZone("IST", 19800))
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendJSON(dailyFilepath(now), e)
}

// AppendTurn writes one conversation turn to the daily turns file.
func AppendTurn(e TurnEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().In(time.FixedZone("IST", 19800))
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendJSON(turnsFilepath(now), e)
}

func appendJSON(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips daily files older than the retention window.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			gz := p + ".gz"
			// if already gz exists, remove original .txt
			if _, e2 := os.Stat(gz); e2 == nil {
				_ = os.Remove(p)
				return nil
			}

			in, e3 := os.Open(p)
			if e3 != nil {
				return nil
			}
			defer in.Close()

			out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if e4 != nil {
				return nil
			}
			gw := gzip.NewWriter(out)
			if _, e5 := io.Copy(gw, in); e5 == nil {
				_ = gw.Close()
				_ = out.Close()
				_ = os.Remove(p)
			} else {
				_ = gw.Close()
				_ = out.Close()
			}
		}
		return nil
	})
}
