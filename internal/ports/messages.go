package ports

import (
	"context"

	"github.com/bft-labs/stereosync/internal/domain"
)

// MessageSink accepts raw camera messages as they arrive.
// Implementations must be safe for concurrent use.
type MessageSink interface {
	AddLeftImage(img domain.Image)
	AddRightImage(img domain.Image)
	AddLeftInfo(info domain.CameraInfo)
	AddRightInfo(info domain.CameraInfo)
}

// MessageSource delivers raw camera messages from the transport.
type MessageSource interface {
	// Run receives messages and forwards them to sink until ctx is canceled.
	// Returns nil on cancellation, an error if the source cannot be opened.
	Run(ctx context.Context, sink MessageSink) error
}

// PairPublisher republishes synchronized stereo pairs.
type PairPublisher interface {
	// PublishPair sends the left (image+info) and right (image+info)
	// messages of the pair. All four share the pair's stamp.
	PublishPair(ctx context.Context, pair domain.SyncedPair) error
}

// InfoPublisher publishes operator-facing diagnostic text.
// The last message is latched for subscribers that join later.
type InfoPublisher interface {
	PublishInfo(ctx context.Context, text string) error
}
