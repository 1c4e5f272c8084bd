// Package wire defines the on-the-wire form of camera messages: topic
// names and the CBOR encoding of message payloads.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/bft-labs/stereosync/internal/domain"
)

// Codec encodes and decodes message payloads as CBOR.
// Stamps are carried as RFC 3339 strings with nanosecond precision.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCodec builds a codec with the stereosync encoding options.
func NewCodec() (*Codec, error) {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor enc mode: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor dec mode: %w", err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// EncodeImage serializes an image.
func (c *Codec) EncodeImage(img domain.Image) ([]byte, error) {
	return c.enc.Marshal(img)
}

// EncodeInfo serializes a camera info.
func (c *Codec) EncodeInfo(info domain.CameraInfo) ([]byte, error) {
	return c.enc.Marshal(info)
}

// EncodeText serializes a diagnostic text message.
func (c *Codec) EncodeText(text string) ([]byte, error) {
	return c.enc.Marshal(textMessage{Data: text})
}

// DecodeImage parses an image payload.
func (c *Codec) DecodeImage(b []byte) (domain.Image, error) {
	var img domain.Image
	if err := c.dec.Unmarshal(b, &img); err != nil {
		return domain.Image{}, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DecodeInfo parses a camera info payload.
func (c *Codec) DecodeInfo(b []byte) (domain.CameraInfo, error) {
	var info domain.CameraInfo
	if err := c.dec.Unmarshal(b, &info); err != nil {
		return domain.CameraInfo{}, fmt.Errorf("decode camera info: %w", err)
	}
	return info, nil
}

// DecodeText parses a diagnostic text payload.
func (c *Codec) DecodeText(b []byte) (string, error) {
	var m textMessage
	if err := c.dec.Unmarshal(b, &m); err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return m.Data, nil
}

type textMessage struct {
	Data string `cbor:"data"`
}
