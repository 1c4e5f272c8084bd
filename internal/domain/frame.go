package domain

import "time"

// Header carries the metadata shared by every camera message.
type Header struct {
	// Seq is the sequence number assigned by the publisher
	Seq uint32 `cbor:"seq" json:"seq"`

	// Stamp is the acquisition time of the data
	Stamp time.Time `cbor:"stamp" json:"stamp"`

	// FrameID is the coordinate frame the data is associated with
	FrameID string `cbor:"frame_id" json:"frame_id"`
}

// Image is a raw, uncompressed camera image.
type Image struct {
	Header      Header `cbor:"header" json:"header"`
	Height      uint32 `cbor:"height" json:"height"`
	Width       uint32 `cbor:"width" json:"width"`
	Encoding    string `cbor:"encoding" json:"encoding"`
	IsBigEndian bool   `cbor:"is_bigendian" json:"is_bigendian"`
	Step        uint32 `cbor:"step" json:"step"`
	Data        []byte `cbor:"data" json:"-"`
}

// CameraInfo holds the calibration of the camera that produced an Image.
type CameraInfo struct {
	Header          Header      `cbor:"header" json:"header"`
	Height          uint32      `cbor:"height" json:"height"`
	Width           uint32      `cbor:"width" json:"width"`
	DistortionModel string      `cbor:"distortion_model" json:"distortion_model"`
	D               []float64   `cbor:"d" json:"d"`
	K               [9]float64  `cbor:"k" json:"k"`
	R               [9]float64  `cbor:"r" json:"r"`
	P               [12]float64 `cbor:"p" json:"p"`
	BinningX        uint32      `cbor:"binning_x" json:"binning_x"`
	BinningY        uint32      `cbor:"binning_y" json:"binning_y"`
}

// Clone returns a deep copy of the image.
func (m Image) Clone() Image {
	if m.Data != nil {
		m.Data = append([]byte(nil), m.Data...)
	}
	return m
}

// Clone returns a deep copy of the camera info.
func (c CameraInfo) Clone() CameraInfo {
	if c.D != nil {
		c.D = append([]float64(nil), c.D...)
	}
	return c
}
