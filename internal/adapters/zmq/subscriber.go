// Package zmq implements the camera message transport over ZeroMQ.
//
// Every message is a two-frame multipart message: the topic name followed
// by the CBOR payload produced by package wire.
package zmq

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/wire"
)

// pollInterval bounds how long a receive blocks before checking ctx.
const pollInterval = 200 * time.Millisecond

// Subscriber implements ports.MessageSource with a SUB socket connected
// to the driver's publisher.
type Subscriber struct {
	endpoint string
	topics   wire.StreamTopics
	codec    *wire.Codec
	logger   ports.Logger
	logEvery int
}

// NewSubscriber creates a subscriber for the four input topics.
// Decode failures are logged once every logEvery occurrences.
func NewSubscriber(endpoint string, topics wire.StreamTopics, codec *wire.Codec, logger ports.Logger, logEvery int) *Subscriber {
	if logEvery < 1 {
		logEvery = 1
	}
	return &Subscriber{
		endpoint: endpoint,
		topics:   topics,
		codec:    codec,
		logger:   logger,
		logEvery: logEvery,
	}
}

// Run connects, subscribes and forwards messages to sink until ctx is canceled.
func (s *Subscriber) Run(ctx context.Context, sink ports.MessageSink) error {
	socket, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return fmt.Errorf("zmq sub socket: %w", err)
	}
	defer socket.Close()

	if err := socket.SetRcvtimeo(pollInterval); err != nil {
		return fmt.Errorf("zmq set rcvtimeo: %w", err)
	}
	if err := socket.SetLinger(0); err != nil {
		return fmt.Errorf("zmq set linger: %w", err)
	}
	if err := socket.Connect(s.endpoint); err != nil {
		return fmt.Errorf("zmq connect %s: %w", s.endpoint, err)
	}
	for _, topic := range s.topics.All() {
		if err := socket.SetSubscribe(topic); err != nil {
			return fmt.Errorf("zmq subscribe %s: %w", topic, err)
		}
	}

	s.logger.Info("subscribed", ports.String("endpoint", s.endpoint))

	var failures int
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		parts, err := socket.RecvMessageBytes(0)
		if err != nil {
			if zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("zmq recv: %w", err)
		}
		if len(parts) != 2 {
			failures++
			s.logEveryN(failures, "unexpected message shape", ports.Int("parts", len(parts)))
			continue
		}

		if err := wire.Dispatch(s.codec, s.topics, string(parts[0]), parts[1], sink); err != nil {
			failures++
			s.logEveryN(failures, "dropped message", ports.Err(err))
		}
	}
}

func (s *Subscriber) logEveryN(count int, msg string, fields ...ports.Field) {
	if s.logEvery > 1 && count%s.logEvery != 1 {
		return
	}
	s.logger.Warn(msg, append(fields, ports.Int("failures", count))...)
}
