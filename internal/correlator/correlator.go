// Package correlator groups left/right images and camera infos that were
// captured at approximately the same time.
//
// Each of the four streams feeds a bounded queue. Once every queue holds a
// message the correlator picks a pivot (the newest of the four queue heads)
// and, from each queue, the message closest to it. The chosen set is
// delivered if its stamps span no more than the configured window, and
// every message up to the chosen ones is consumed. Otherwise only the
// oldest queue head is discarded and matching is retried.
//
// A queue whose newest message is older than the pivot by more than the
// slop may yet receive a better candidate, so matching waits for it unless
// that queue is already full.
package correlator

import (
	"sync"
	"time"

	"github.com/bft-labs/stereosync/internal/domain"
)

// Default correlator configuration values.
const (
	DefaultQueueSize = 5
	DefaultWindow    = time.Second
	DefaultSlop      = 50 * time.Millisecond
)

// Config configures a Correlator.
type Config struct {
	// QueueSize bounds each input queue; the oldest message is dropped
	// when a full queue receives a new one.
	QueueSize int

	// Window is the largest stamp spread of a delivered set.
	Window time.Duration

	// Slop is how far behind the pivot a queue's newest message may be
	// before matching waits for that queue to catch up.
	Slop time.Duration
}

// Handler receives correlated frame sets. It is called without the
// correlator lock held, in arrival order of the completing message.
type Handler func(set domain.FrameSet)

// Stats counts correlator activity. Rejected counts queue heads discarded
// because no set within the window could include them.
type Stats struct {
	Delivered uint64
	Rejected  uint64
	Overflows uint64
}

// Correlator implements ports.MessageSink.
type Correlator struct {
	mu      sync.Mutex
	cfg     Config
	handler Handler
	stats   Stats

	leftImages  queue[domain.Image]
	rightImages queue[domain.Image]
	leftInfos   queue[domain.CameraInfo]
	rightInfos  queue[domain.CameraInfo]
}

// New creates a correlator that delivers matched sets to h.
func New(cfg Config, h Handler) *Correlator {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Slop <= 0 {
		cfg.Slop = DefaultSlop
	}
	return &Correlator{
		cfg:         cfg,
		handler:     h,
		leftImages:  queue[domain.Image]{stamp: imageStamp},
		rightImages: queue[domain.Image]{stamp: imageStamp},
		leftInfos:   queue[domain.CameraInfo]{stamp: infoStamp},
		rightInfos:  queue[domain.CameraInfo]{stamp: infoStamp},
	}
}

// AddLeftImage enqueues a left image.
func (c *Correlator) AddLeftImage(img domain.Image) {
	c.add(func() bool { return c.leftImages.push(img, c.cfg.QueueSize) })
}

// AddRightImage enqueues a right image.
func (c *Correlator) AddRightImage(img domain.Image) {
	c.add(func() bool { return c.rightImages.push(img, c.cfg.QueueSize) })
}

// AddLeftInfo enqueues a left camera info.
func (c *Correlator) AddLeftInfo(info domain.CameraInfo) {
	c.add(func() bool { return c.leftInfos.push(info, c.cfg.QueueSize) })
}

// AddRightInfo enqueues a right camera info.
func (c *Correlator) AddRightInfo(info domain.CameraInfo) {
	c.add(func() bool { return c.rightInfos.push(info, c.cfg.QueueSize) })
}

// Stats returns a copy of the activity counters.
func (c *Correlator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Correlator) add(push func() bool) {
	c.mu.Lock()
	if push() {
		c.stats.Overflows++
	}
	sets := c.drain()
	c.mu.Unlock()

	if c.handler == nil {
		return
	}
	for _, set := range sets {
		c.handler(set)
	}
}

// drain extracts every set that can be decided with the queued messages.
// Caller must hold c.mu.
func (c *Correlator) drain() []domain.FrameSet {
	var out []domain.FrameSet
	for {
		if c.leftImages.empty() || c.rightImages.empty() || c.leftInfos.empty() || c.rightInfos.empty() {
			return out
		}

		pivot := latest(c.leftImages.head(), c.rightImages.head(), c.leftInfos.head(), c.rightInfos.head())

		size, slop := c.cfg.QueueSize, c.cfg.Slop
		if c.leftImages.waiting(pivot, slop, size) || c.rightImages.waiting(pivot, slop, size) ||
			c.leftInfos.waiting(pivot, slop, size) || c.rightInfos.waiting(pivot, slop, size) {
			return out
		}

		li, ri := c.leftImages.closest(pivot), c.rightImages.closest(pivot)
		lc, rc := c.leftInfos.closest(pivot), c.rightInfos.closest(pivot)

		candidate := domain.FrameSet{
			LeftImage:  c.leftImages.items[li],
			RightImage: c.rightImages.items[ri],
			LeftInfo:   c.leftInfos.items[lc],
			RightInfo:  c.rightInfos.items[rc],
		}
		if spread(candidate) > c.cfg.Window {
			// Only the oldest head can be ruled out; the other queues
			// keep their candidates for when the lagging stream catches up.
			c.dropOldestHead()
			c.stats.Rejected++
			continue
		}

		c.leftImages.take(li)
		c.rightImages.take(ri)
		c.leftInfos.take(lc)
		c.rightInfos.take(rc)
		c.stats.Delivered++
		out = append(out, candidate)
	}
}

// dropOldestHead discards the head with the earliest stamp.
// Caller must hold c.mu.
func (c *Correlator) dropOldestHead() {
	heads := []struct {
		stamp time.Time
		drop  func()
	}{
		{c.leftImages.head(), c.leftImages.dropHead},
		{c.rightImages.head(), c.rightImages.dropHead},
		{c.leftInfos.head(), c.leftInfos.dropHead},
		{c.rightInfos.head(), c.rightInfos.dropHead},
	}
	oldest := 0
	for i := 1; i < len(heads); i++ {
		if heads[i].stamp.Before(heads[oldest].stamp) {
			oldest = i
		}
	}
	heads[oldest].drop()
}

func imageStamp(m domain.Image) time.Time     { return m.Header.Stamp }
func infoStamp(m domain.CameraInfo) time.Time { return m.Header.Stamp }

func latest(ts ...time.Time) time.Time {
	max := ts[0]
	for _, t := range ts[1:] {
		if t.After(max) {
			max = t
		}
	}
	return max
}

func spread(s domain.FrameSet) time.Duration {
	ts := []time.Time{
		s.LeftImage.Header.Stamp, s.RightImage.Header.Stamp,
		s.LeftInfo.Header.Stamp, s.RightInfo.Header.Stamp,
	}
	lo, hi := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return hi.Sub(lo)
}
