package zmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/pebbe/zmq4"

	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/wire"
)

// Publisher implements ports.PairPublisher and ports.InfoPublisher on a
// bound PUB socket. ZeroMQ sockets are not goroutine-safe, so every send
// holds mu; the four messages of a pair go out back to back.
type Publisher struct {
	mu        sync.Mutex
	socket    *zmq4.Socket
	topics    wire.StreamTopics
	infoTopic string
	codec     *wire.Codec
}

// NewPublisher binds a PUB socket on endpoint.
func NewPublisher(endpoint string, topics wire.StreamTopics, infoTopic string, codec *wire.Codec) (*Publisher, error) {
	socket, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("zmq pub socket: %w", err)
	}
	if err := socket.SetLinger(0); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("zmq set linger: %w", err)
	}
	if err := socket.Bind(endpoint); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("zmq bind %s: %w", endpoint, err)
	}
	return &Publisher{
		socket:    socket,
		topics:    topics,
		infoTopic: infoTopic,
		codec:     codec,
	}, nil
}

// PublishPair sends the left and right image+info messages of pair.
func (p *Publisher) PublishPair(ctx context.Context, pair domain.SyncedPair) error {
	envs, err := wire.EncodePair(p.codec, p.topics, pair)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range envs {
		if _, err := p.socket.SendMessage(e.Topic, e.Payload); err != nil {
			return fmt.Errorf("zmq send %s: %w", e.Topic, err)
		}
	}
	return nil
}

// PublishInfo sends a diagnostic text on the info topic.
func (p *Publisher) PublishInfo(ctx context.Context, text string) error {
	payload, err := p.codec.EncodeText(text)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.socket.SendMessage(p.infoTopic, payload); err != nil {
		return fmt.Errorf("zmq send %s: %w", p.infoTopic, err)
	}
	return nil
}

// Close closes the socket.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.socket.Close()
}
