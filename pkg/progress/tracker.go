// Package progress prints periodic throughput updates while payload
// bytes are being copied out of an archive.
package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var (
	written atomic.Uint64
	total   uint64
	done    chan struct{}
	mu      sync.Mutex
	running bool
)

// Init starts the background reporter. total is the expected number of
// bytes; pass 0 if unknown.
func Init(totalBytes uint64) {
	mu.Lock()
	defer mu.Unlock()
	if running {
		return
	}
	written.Store(0)
	total = totalBytes
	done = make(chan struct{})
	running = true
	go report()
}

// Stop shuts the reporter down and prints a final summary line.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if running {
		close(done)
		running = false
	}
}

func report() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	start := time.Now()
	var prev uint64

	for {
		select {
		case <-ticker.C:
			cur := written.Load()
			if total > 0 {
				fmt.Printf("dumped %s of %s (%.1f%%) at %s/s\n",
					formatSize(cur), formatSize(total),
					float64(cur)/float64(total)*100, formatSize(cur-prev))
			} else {
				fmt.Printf("dumped %s at %s/s\n", formatSize(cur), formatSize(cur-prev))
			}
			prev = cur
		case <-done:
			elapsed := time.Since(start).Seconds()
			if elapsed > 0 && written.Load() > 0 {
				fmt.Printf("dumped %s in %.1fs\n", formatSize(written.Load()), elapsed)
			}
			return
		}
	}
}

func formatSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Writer counts bytes on their way to the wrapped writer.
type Writer struct {
	W io.Writer
}

func (pw *Writer) Write(p []byte) (int, error) {
	n, err := pw.W.Write(p)
	if n > 0 {
		written.Add(uint64(n))
	}
	return n, err
}
