package server

import (
	"bytes"
	"context"
	"sync"

	"gocv.io/x/gocv"
	"golang.org/x/time/rate"

	"github.com/ayusman/bhava/internal/app"
)

// JPEGQuality is the quality of frames encoded for the MJPEG stream.
const JPEGQuality = 80

// subscriberBuffer is the number of results queued per websocket client
// before new results are dropped for it.
const subscriberBuffer = 8

// Hub receives results from the capture loop and hands them to HTTP clients.
// It keeps the latest annotated frame as JPEG and fans out each result as
// JSON. Publishing is throttled to the configured rate; frames arriving
// faster are skipped.
type Hub struct {
	limiter *rate.Limiter

	mu       sync.RWMutex
	latest   []byte
	frameSeq uint64
	updated  chan struct{}
	subs     map[chan []byte]struct{}
}

// NewHub creates a hub publishing at most fps results per second.
func NewHub(fps int) *Hub {
	if fps <= 0 {
		fps = 15
	}
	return &Hub{
		limiter: rate.NewLimiter(rate.Limit(fps), 1),
		updated: make(chan struct{}),
		subs:    make(map[chan []byte]struct{}),
	}
}

// Observe is an app.Observer. It encodes the annotated frame and publishes
// it together with the result.
func (h *Hub) Observe(res app.FrameResult, frame *gocv.Mat) {
	if !h.limiter.Allow() {
		return
	}

	var jpeg []byte
	if frame != nil && !frame.Empty() {
		buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), JPEGQuality})
		if err != nil {
			log.WithError(err).Warn("Failed to encode frame")
		} else {
			jpeg = bytes.Clone(buf.GetBytes())
			buf.Close()
		}
	}

	msg, err := json.Marshal(res)
	if err != nil {
		log.WithError(err).Warn("Failed to encode result")
		msg = nil
	}

	h.Publish(jpeg, msg)
}

// Publish stores jpeg as the latest frame when it is non-nil and sends msg
// to every subscriber when it is non-nil. Subscribers with a full queue miss
// the message.
func (h *Hub) Publish(jpeg, msg []byte) {
	h.mu.Lock()
	if jpeg != nil {
		h.latest = jpeg
		h.frameSeq++
		close(h.updated)
		h.updated = make(chan struct{})
	}
	if msg != nil {
		for ch := range h.subs {
			select {
			case ch <- msg:
			default:
			}
		}
	}
	h.mu.Unlock()
}

// Latest returns the most recent frame and its sequence number. The frame
// is nil until the first one is published.
func (h *Hub) Latest() ([]byte, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.frameSeq
}

// Next blocks until a frame newer than after is available or ctx is done.
func (h *Hub) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		h.mu.RLock()
		jpeg, seq, updated := h.latest, h.frameSeq, h.updated
		h.mu.RUnlock()

		if seq > after {
			return jpeg, seq, nil
		}

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-updated:
		}
	}
}

// Subscribe registers a result subscriber. The returned function removes it
// and closes the channel.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
