package wire

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bft-labs/stereosync/internal/domain"
)

type recordingSink struct {
	leftImages, rightImages []domain.Image
	leftInfos, rightInfos   []domain.CameraInfo
}

func (s *recordingSink) AddLeftImage(img domain.Image)       { s.leftImages = append(s.leftImages, img) }
func (s *recordingSink) AddRightImage(img domain.Image)      { s.rightImages = append(s.rightImages, img) }
func (s *recordingSink) AddLeftInfo(info domain.CameraInfo)  { s.leftInfos = append(s.leftInfos, info) }
func (s *recordingSink) AddRightInfo(info domain.CameraInfo) { s.rightInfos = append(s.rightInfos, info) }

func newCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

func sampleImage() domain.Image {
	return domain.Image{
		Header: domain.Header{
			Seq:     42,
			Stamp:   time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC),
			FrameID: "stereo_down_left",
		},
		Height:   2,
		Width:    2,
		Encoding: "mono8",
		Step:     2,
		Data:     []byte{1, 2, 3, 4},
	}
}

func TestTopics(t *testing.T) {
	in := InputTopics("/stereo_down")
	if in.LeftImage != "/stereo_down_unsync/left/image_raw" {
		t.Errorf("InputTopics().LeftImage = %q", in.LeftImage)
	}
	if in.RightInfo != "/stereo_down_unsync/right/camera_info" {
		t.Errorf("InputTopics().RightInfo = %q", in.RightInfo)
	}

	out := OutputTopics("/stereo_down/")
	if out.RightImage != "/stereo_down/right/image_raw" {
		t.Errorf("OutputTopics().RightImage = %q", out.RightImage)
	}
	if got := InfoTopic("/stereo_sync"); got != "/stereo_sync/info" {
		t.Errorf("InfoTopic() = %q", got)
	}
}

func TestCodec_PreservesStampPrecision(t *testing.T) {
	c := newCodec(t)
	img := sampleImage()

	b, err := c.EncodeImage(img)
	if err != nil {
		t.Fatalf("EncodeImage() error = %v", err)
	}
	got, err := c.DecodeImage(b)
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	if diff := cmp.Diff(img, got); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch(t *testing.T) {
	c := newCodec(t)
	topics := InputTopics("/cam")
	sink := &recordingSink{}

	imgPayload, _ := c.EncodeImage(sampleImage())
	infoPayload, _ := c.EncodeInfo(domain.CameraInfo{DistortionModel: "plumb_bob", D: []float64{0.1, 0.2}})

	if err := Dispatch(c, topics, topics.RightImage, imgPayload, sink); err != nil {
		t.Fatalf("Dispatch(right image) error = %v", err)
	}
	if err := Dispatch(c, topics, topics.LeftInfo, infoPayload, sink); err != nil {
		t.Fatalf("Dispatch(left info) error = %v", err)
	}

	if len(sink.rightImages) != 1 || len(sink.leftImages) != 0 {
		t.Errorf("images routed left=%d right=%d, want 0/1", len(sink.leftImages), len(sink.rightImages))
	}
	if len(sink.leftInfos) != 1 || sink.leftInfos[0].DistortionModel != "plumb_bob" {
		t.Errorf("left infos = %+v", sink.leftInfos)
	}

	err := Dispatch(c, topics, "/other", imgPayload, sink)
	if !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("Dispatch(unknown) error = %v, want ErrUnknownTopic", err)
	}

	if err := Dispatch(c, topics, topics.LeftImage, []byte{0xff, 0x00}, sink); err == nil {
		t.Error("Dispatch(garbage) error = nil, want decode error")
	}
}

func TestEncodePair_Order(t *testing.T) {
	c := newCodec(t)
	topics := OutputTopics("/cam")
	set := domain.FrameSet{LeftImage: sampleImage(), RightImage: sampleImage()}
	pair := set.Restamp(time.Unix(50, 0))

	envs, err := EncodePair(c, topics, pair)
	if err != nil {
		t.Fatalf("EncodePair() error = %v", err)
	}

	want := []string{topics.LeftImage, topics.LeftInfo, topics.RightImage, topics.RightInfo}
	var got []string
	for _, e := range envs {
		got = append(got, e.Topic)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("topic order mismatch (-want +got):\n%s", diff)
	}

	rc, err := c.DecodeInfo(envs[3].Payload)
	if err != nil {
		t.Fatalf("DecodeInfo() error = %v", err)
	}
	if !rc.Header.Stamp.Equal(time.Unix(50, 0)) {
		t.Errorf("right info stamp = %v, want %v", rc.Header.Stamp, time.Unix(50, 0))
	}
}

func TestCodec_Text(t *testing.T) {
	c := newCodec(t)
	b, err := c.EncodeText("hello")
	if err != nil {
		t.Fatalf("EncodeText() error = %v", err)
	}
	got, err := c.DecodeText(b)
	if err != nil || got != "hello" {
		t.Errorf("DecodeText() = %q, %v", got, err)
	}
}
