package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
)

// ErrUnknownTopic is returned for messages on a topic nobody subscribed to.
var ErrUnknownTopic = errors.New("wire: unknown topic")

// StreamTopics names the four topics of one stereo camera.
type StreamTopics struct {
	LeftImage  string
	RightImage string
	LeftInfo   string
	RightInfo  string
}

// InputTopics returns the topics of the unsynchronized driver output
// under the camera namespace.
func InputTopics(camera string) StreamTopics {
	return streamTopics(strings.TrimSuffix(camera, "/") + "_unsync")
}

// OutputTopics returns the topics of the synchronized republication.
func OutputTopics(camera string) StreamTopics {
	return streamTopics(strings.TrimSuffix(camera, "/"))
}

// InfoTopic returns the diagnostic topic of the node.
func InfoTopic(node string) string {
	return strings.TrimSuffix(node, "/") + "/info"
}

func streamTopics(prefix string) StreamTopics {
	return StreamTopics{
		LeftImage:  prefix + "/left/image_raw",
		RightImage: prefix + "/right/image_raw",
		LeftInfo:   prefix + "/left/camera_info",
		RightInfo:  prefix + "/right/camera_info",
	}
}

// All returns the topics in a fixed order.
func (t StreamTopics) All() []string {
	return []string{t.LeftImage, t.RightImage, t.LeftInfo, t.RightInfo}
}

// Dispatch decodes payload according to topic and hands it to sink.
func Dispatch(c *Codec, t StreamTopics, topic string, payload []byte, sink ports.MessageSink) error {
	switch topic {
	case t.LeftImage, t.RightImage:
		img, err := c.DecodeImage(payload)
		if err != nil {
			return err
		}
		if topic == t.LeftImage {
			sink.AddLeftImage(img)
		} else {
			sink.AddRightImage(img)
		}
	case t.LeftInfo, t.RightInfo:
		info, err := c.DecodeInfo(payload)
		if err != nil {
			return err
		}
		if topic == t.LeftInfo {
			sink.AddLeftInfo(info)
		} else {
			sink.AddRightInfo(info)
		}
	default:
		return fmt.Errorf("%q: %w", topic, ErrUnknownTopic)
	}
	return nil
}

// Envelope is one encoded message ready to be sent on topic.
type Envelope struct {
	Topic   string
	Payload []byte
}

// EncodePair encodes the four messages of a synchronized pair in the order
// left image, left info, right image, right info.
func EncodePair(c *Codec, t StreamTopics, pair domain.SyncedPair) ([]Envelope, error) {
	li, err := c.EncodeImage(pair.LeftImage)
	if err != nil {
		return nil, fmt.Errorf("encode left image: %w", err)
	}
	lc, err := c.EncodeInfo(pair.LeftInfo)
	if err != nil {
		return nil, fmt.Errorf("encode left info: %w", err)
	}
	ri, err := c.EncodeImage(pair.RightImage)
	if err != nil {
		return nil, fmt.Errorf("encode right image: %w", err)
	}
	rc, err := c.EncodeInfo(pair.RightInfo)
	if err != nil {
		return nil, fmt.Errorf("encode right info: %w", err)
	}
	return []Envelope{
		{Topic: t.LeftImage, Payload: li},
		{Topic: t.LeftInfo, Payload: lc},
		{Topic: t.RightImage, Payload: ri},
		{Topic: t.RightInfo, Payload: rc},
	}, nil
}
