package matchlog

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	bufferSize         = 1024 // circular buffer size, power of two
	maxEventsPerSec    = 2000 // global rate limit across every match
	batchFlushSize     = 64
	batchFlushInterval = 100 * time.Millisecond
)

// Log is a bounded, rate-limited append-only sink shared by every match a
// process hosts: one circular buffer and one writer goroutine, not one
// per match. Per-match burst control is deliberately NOT this type's
// job — a match.Host already has its own bounded lifecycle (created by
// the lobby's Registry, torn down on game over or idle sweep), so each
// Host carries its own small rate limiter that simply stops existing
// when the match does, rather than this type tracking one limiter per
// match code in a map it would need a separate sweep to evict from.
type Log struct {
	buffer    [bufferSize]Event
	writeHead uint64 // atomic, producer position
	readHead  uint64 // atomic, consumer position

	globalLimiter *rate.Limiter

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	filePath string
	file     *os.File
	fileMu   sync.Mutex

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// New returns an unstarted Log.
func New() *Log {
	return &Log{
		globalLimiter: rate.NewLimiter(maxEventsPerSec, maxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the async writer goroutine, appending newline-delimited
// JSON to filePath. An empty filePath runs the rate limiter and buffer
// bookkeeping without ever touching disk (useful for tests).
func (l *Log) Start(filePath string) error {
	if l.running.Load() {
		return nil
	}

	l.filePath = filePath
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		l.file = file
	}

	l.running.Store(true)
	l.writerWg.Add(1)
	go l.writerLoop()

	return nil
}

// Stop gracefully shuts down the writer, flushing any buffered events.
func (l *Log) Stop() {
	l.stopOnce.Do(func() {
		l.running.Store(false)
		close(l.stopChan)
		l.writerWg.Wait()

		l.fileMu.Lock()
		if l.file != nil {
			l.file.Close()
		}
		l.fileMu.Unlock()
	})
}

// Emit appends an event, subject to the global rate limit. Callers that
// want per-match burst control (match.Host does) must apply it before
// calling Emit. Returns false if the log is not running or the event was
// rate-limited. When the buffer is full the oldest unflushed event is
// dropped to make room and the new one is still accepted.
func (l *Log) Emit(event Event) bool {
	if !l.running.Load() {
		return false
	}

	if !l.globalLimiter.Allow() {
		atomic.AddUint64(&l.droppedCount, 1)
		return false
	}

	head := atomic.AddUint64(&l.writeHead, 1)
	tail := atomic.LoadUint64(&l.readHead)

	if head-tail >= bufferSize {
		atomic.AddUint64(&l.readHead, 1)
		atomic.AddUint64(&l.droppedCount, 1)
	}

	event.Sequence = head
	l.buffer[(head-1)%bufferSize] = event
	atomic.AddUint64(&l.totalCount, 1)
	return true
}

// EmitSimple is a convenience wrapper that builds and emits an Event.
func (l *Log) EmitSimple(eventType EventType, matchCode string, tick uint32, payload interface{}) bool {
	return l.Emit(NewEvent(eventType, matchCode, tick, payload))
}

func (l *Log) writerLoop() {
	defer l.writerWg.Done()

	ticker := time.NewTicker(batchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)

	for {
		select {
		case <-l.stopChan:
			batch = l.collectBatch(batch[:0])
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
			return
		case <-ticker.C:
			batch = l.collectBatch(batch[:0])
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
		}
	}
}

func (l *Log) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&l.writeHead)
	tail := atomic.LoadUint64(&l.readHead)

	for i := tail; i < head && len(batch) < batchFlushSize; i++ {
		batch = append(batch, l.buffer[i%bufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&l.readHead, uint64(len(batch)))
	}
	return batch
}

func (l *Log) flushBatch(batch []Event) {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	if l.file == nil {
		return
	}
	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		l.file.Write(data)
		l.file.Write([]byte("\n"))
	}
}

// Stats returns the counters the lobby's Prometheus metrics read from.
func (l *Log) Stats() (total, dropped uint64) {
	return atomic.LoadUint64(&l.totalCount), atomic.LoadUint64(&l.droppedCount)
}
