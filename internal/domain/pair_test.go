package domain

import (
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testSet(leftOffset, rightOffset time.Duration) FrameSet {
	return FrameSet{
		LeftImage:  Image{Header: Header{Seq: 1, Stamp: t0.Add(leftOffset), FrameID: "left"}, Data: []byte{1, 2, 3}},
		RightImage: Image{Header: Header{Seq: 1, Stamp: t0.Add(rightOffset), FrameID: "right"}, Data: []byte{4, 5, 6}},
		LeftInfo:   CameraInfo{Header: Header{Stamp: t0.Add(leftOffset), FrameID: "left"}, D: []float64{0.1}},
		RightInfo:  CameraInfo{Header: Header{Stamp: t0.Add(rightOffset), FrameID: "right"}, D: []float64{0.2}},
	}
}

func TestFrameSet_TimeError(t *testing.T) {
	tests := []struct {
		name  string
		left  time.Duration
		right time.Duration
		want  time.Duration
	}{
		{"equal", 0, 0, 0},
		{"left later", 50 * time.Millisecond, 0, 50 * time.Millisecond},
		{"right later", 0, 150 * time.Millisecond, 150 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testSet(tt.left, tt.right).TimeError(); got != tt.want {
				t.Errorf("TimeError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrameSet_Restamp(t *testing.T) {
	set := testSet(0, 40*time.Millisecond)
	stamp := t0.Add(time.Hour)

	pair := set.Restamp(stamp)

	if !pair.Coherent() {
		t.Fatal("restamped pair is not coherent")
	}
	if !pair.Stamp().Equal(stamp) {
		t.Errorf("Stamp() = %v, want %v", pair.Stamp(), stamp)
	}
	if pair.LeftImage.Header.FrameID != "left" || pair.RightInfo.Header.FrameID != "right" {
		t.Error("restamp changed frame ids")
	}
	if !set.LeftImage.Header.Stamp.Equal(t0) {
		t.Error("restamp modified the source set")
	}

	pair.LeftImage.Data[0] = 9
	pair.LeftInfo.D[0] = 9
	if set.LeftImage.Data[0] != 1 || set.LeftInfo.D[0] != 0.1 {
		t.Error("restamped pair shares buffers with the source set")
	}
}

func TestSyncedPair_Coherent(t *testing.T) {
	pair := testSet(0, 0).Restamp(t0)
	pair.RightInfo.Header.Stamp = t0.Add(time.Millisecond)
	if pair.Coherent() {
		t.Error("Coherent() = true for mixed stamps")
	}
}

func TestRestartEvent_Message(t *testing.T) {
	e := RestartEvent{
		LogicalTime: time.Unix(6, 0),
		WallTime:    time.Unix(1700000000, 500000000),
	}
	msg := e.Message()

	if !strings.HasPrefix(msg, "Resetting camera driver at logical-time 6.000000s") {
		t.Errorf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "(wall-time 1700000000.500000s)") {
		t.Errorf("message missing wall time: %q", msg)
	}
}

func TestStatus_Record(t *testing.T) {
	var st Status
	first := RestartEvent{ID: "a", WallTime: t0}
	second := RestartEvent{ID: "b", WallTime: t0.Add(time.Minute)}

	st.Record(first)
	st.Record(second)

	if st.Restarts != 2 {
		t.Errorf("Restarts = %d, want 2", st.Restarts)
	}
	if st.LastRestart == nil || st.LastRestart.ID != "b" {
		t.Errorf("LastRestart = %+v, want b", st.LastRestart)
	}
	if !st.UpdatedAt.Equal(second.WallTime) {
		t.Errorf("UpdatedAt = %v, want %v", st.UpdatedAt, second.WallTime)
	}
}
