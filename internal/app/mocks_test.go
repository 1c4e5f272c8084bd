package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
)

var epoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func frameSet(left, right time.Duration) domain.FrameSet {
	return domain.FrameSet{
		LeftImage:  domain.Image{Header: domain.Header{Stamp: epoch.Add(left), FrameID: "left"}},
		RightImage: domain.Image{Header: domain.Header{Stamp: epoch.Add(right), FrameID: "right"}},
		LeftInfo:   domain.CameraInfo{Header: domain.Header{Stamp: epoch.Add(left), FrameID: "left"}},
		RightInfo:  domain.CameraInfo{Header: domain.Header{Stamp: epoch.Add(right), FrameID: "right"}},
	}
}

// logEntry is a captured log call.
type logEntry struct {
	level string
	msg   string
}

// recordingLogger captures log messages for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ ...ports.Field) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...ports.Field)  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...ports.Field)  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...ports.Field) { l.add("error", msg) }

// count returns how many entries at level carry msg.
func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			n++
		}
	}
	return n
}

// mockPublisher records published pairs.
type mockPublisher struct {
	mu    sync.Mutex
	pairs []domain.SyncedPair
	err   error
}

func (p *mockPublisher) PublishPair(_ context.Context, pair domain.SyncedPair) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pairs = append(p.pairs, pair)
	return p.err
}

func (p *mockPublisher) Pairs() []domain.SyncedPair {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SyncedPair(nil), p.pairs...)
}

// mockInfo records info messages.
type mockInfo struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockInfo) PublishInfo(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockInfo) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// mockDriver records the order of driver commands.
type mockDriver struct {
	mu    sync.Mutex
	calls []string
	// block, when set, is waited on inside Stop.
	block chan struct{}
	// entered is closed when Stop is first called.
	entered chan struct{}
	once    sync.Once
}

func (d *mockDriver) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.calls = append(d.calls, "stop")
	d.mu.Unlock()
	if d.entered != nil {
		d.once.Do(func() { close(d.entered) })
	}
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
		}
	}
	return nil
}

func (d *mockDriver) Start(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "start")
	return nil
}

func (d *mockDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// mockStatus is an in-memory StatusRepository.
type mockStatus struct {
	mu      sync.Mutex
	status  domain.Status
	saves   int
	loadErr error
}

func (s *mockStatus) Load(context.Context) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.loadErr
}

func (s *mockStatus) Save(_ context.Context, st domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.saves++
	return nil
}

// mockRestartEmitter records restart events.
type mockRestartEmitter struct {
	mu     sync.Mutex
	events []domain.RestartEvent
}

func (m *mockRestartEmitter) OnRestart(e domain.RestartEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *mockRestartEmitter) Events() []domain.RestartEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RestartEvent(nil), m.events...)
}

// mockSource feeds a fixed list of sets into the sink, then blocks.
type mockSource struct {
	mu    sync.Mutex
	runs  int
	sets  []domain.FrameSet
	fails int
}

var errSourceDown = errors.New("source down")

func (s *mockSource) Run(ctx context.Context, sink ports.MessageSink) error {
	s.mu.Lock()
	s.runs++
	fail := s.runs <= s.fails
	sets := s.sets
	s.mu.Unlock()

	if fail {
		return errSourceDown
	}
	for _, set := range sets {
		sink.AddLeftImage(set.LeftImage)
		sink.AddRightImage(set.RightImage)
		sink.AddLeftInfo(set.LeftInfo)
		sink.AddRightInfo(set.RightInfo)
	}
	<-ctx.Done()
	return nil
}

func (s *mockSource) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}
