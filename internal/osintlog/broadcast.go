package osintlog

import (
	"container/ring"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// DefaultBufferSize is the number of recent lines a Broadcaster replays to a
// newly attached subscriber.
const DefaultBufferSize = 200

// broadcastWarnWriter receives the structured warning emitted when a
// subscriber's channel is full. A package var so tests can swap it out.
var broadcastWarnWriter io.Writer = os.Stderr

// Broadcaster fans written lines out to any number of subscribers without
// letting a slow subscriber stall the writer: a full channel drops the line
// rather than blocking.
//
// The scan pipeline does not create one: the orchestrator sends its
// events.KindLog events directly on the scan's event channel.
type Broadcaster struct {
	mu          sync.Mutex
	buffer      *ring.Ring
	subscribers map[string]chan string
}

// NewBroadcaster returns a Broadcaster that replays up to size prior lines
// to new subscribers.
func NewBroadcaster(size int) *Broadcaster {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Broadcaster{
		buffer:      ring.New(size),
		subscribers: make(map[string]chan string),
	}
}

// Write implements io.Writer so a Broadcaster can sit behind a zerolog
// MultiLevelWriter alongside the process logger.
func (b *Broadcaster) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")

	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer.Value = line
	b.buffer = b.buffer.Next()

	for id, ch := range b.subscribers {
		select {
		case ch <- line:
		default:
			fmt.Fprintf(broadcastWarnWriter,
				"event=subscriber_blocked subscriber_id=%s action=drop_message\n", id)
		}
	}
	return len(p), nil
}

// Subscribe attaches a new subscriber identified by id, returning a channel
// that replays buffered lines before streaming live ones. The returned
// function detaches the subscriber and closes its channel.
func (b *Broadcaster) Subscribe(id string) (<-chan string, func()) {
	b.mu.Lock()
	ch := make(chan string, DefaultBufferSize)
	b.subscribers[id] = ch

	b.buffer.Do(func(v any) {
		if v == nil {
			return
		}
		select {
		case ch <- v.(string):
		default:
		}
	})
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}
}
