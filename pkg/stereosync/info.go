package stereosync

import (
	"context"
	"errors"
)

// infoFanout publishes each diagnostic message to every sink.
type infoFanout []InfoPublisher

func (f infoFanout) PublishInfo(ctx context.Context, text string) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishInfo(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
