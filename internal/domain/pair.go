package domain

import "time"

// FrameSet is one correlated tuple of left/right images and camera infos.
// It is constructed per delivery and consumed immediately.
type FrameSet struct {
	LeftImage  Image
	RightImage Image
	LeftInfo   CameraInfo
	RightInfo  CameraInfo
}

// TimeError returns the absolute difference between the left and right image stamps.
func (s FrameSet) TimeError() time.Duration {
	d := s.LeftImage.Header.Stamp.Sub(s.RightImage.Header.Stamp)
	if d < 0 {
		return -d
	}
	return d
}

// SyncedPair is a FrameSet whose four components share a single stamp.
type SyncedPair struct {
	LeftImage  Image
	RightImage Image
	LeftInfo   CameraInfo
	RightInfo  CameraInfo
}

// Restamp copies the set and overwrites every header stamp with stamp.
// The receiver is left untouched.
func (s FrameSet) Restamp(stamp time.Time) SyncedPair {
	p := SyncedPair{
		LeftImage:  s.LeftImage.Clone(),
		RightImage: s.RightImage.Clone(),
		LeftInfo:   s.LeftInfo.Clone(),
		RightInfo:  s.RightInfo.Clone(),
	}
	p.LeftImage.Header.Stamp = stamp
	p.RightImage.Header.Stamp = stamp
	p.LeftInfo.Header.Stamp = stamp
	p.RightInfo.Header.Stamp = stamp
	return p
}

// Stamp returns the shared stamp of the pair.
func (p SyncedPair) Stamp() time.Time {
	return p.LeftImage.Header.Stamp
}

// Coherent reports whether all four components carry the same stamp.
func (p SyncedPair) Coherent() bool {
	ts := p.LeftImage.Header.Stamp
	return ts.Equal(p.RightImage.Header.Stamp) &&
		ts.Equal(p.LeftInfo.Header.Stamp) &&
		ts.Equal(p.RightInfo.Header.Stamp)
}
