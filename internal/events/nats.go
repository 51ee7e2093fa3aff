package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type NatsPublisher struct {
	nc      *nats.Conn
	subject string
}

func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("music-share-api"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NatsPublisher{nc: nc, subject: subject}, nil
}

func (p *NatsPublisher) PublishFileUploaded(ctx context.Context, ev FileUploaded) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encode(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, b)
}

func (p *NatsPublisher) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
