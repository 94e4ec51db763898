// Package mq implements a Loader over an Apache Pulsar topic, adapted from
// the teacher corpus's own stream submodule (a thin Pulsar consumer
// wrapper), generalized to emit node.Node values from message payloads
// instead of framework-internal envelopes. Useful for indexing pipelines
// that consume a continuous feed rather than a finite filesystem walk.
package mq

import (
	"context"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/kestrelai/ragpipe/indexing"
	"github.com/kestrelai/ragpipe/node"
	"github.com/kestrelai/ragpipe/rstream"
)

// Config configures the message-queue loader.
type Config struct {
	ServiceURL string
	Topic      string
	Subscription string
	// PathFromProperty names a message property to use as Node.Path;
	// falls back to the message ID's string form when empty or absent.
	PathFromProperty string
}

// Loader consumes pulsar messages and emits one Node per message,
// acknowledging each message after it is handed to the stream.
type Loader struct {
	cfg Config
}

// New builds an mq Loader.
func New(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

// IntoStream implements indexing.Loader. The stream is infinite until ctx
// is cancelled. A failure to create the client or to subscribe emits one
// Err and ends the stream; a failed Receive emits an Err and the loop
// keeps consuming.
func (l *Loader) IntoStream(ctx context.Context) <-chan indexing.NodeResult {
	out := make(chan indexing.NodeResult)

	go func() {
		defer close(out)

		client, err := pulsar.NewClient(pulsar.ClientOptions{URL: l.cfg.ServiceURL})
		if err != nil {
			emit(ctx, out, rstream.Err[*node.Node](fmt.Errorf("mq: failed to create client: %w", err)))
			return
		}
		defer client.Close()

		consumer, err := client.Subscribe(pulsar.ConsumerOptions{
			Topic:            l.cfg.Topic,
			SubscriptionName: l.cfg.Subscription,
			Type:             pulsar.Shared,
		})
		if err != nil {
			emit(ctx, out, rstream.Err[*node.Node](fmt.Errorf("mq: failed to subscribe: %w", err)))
			return
		}
		defer consumer.Close()

		for {
			msg, err := consumer.Receive(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				emit(ctx, out, rstream.Err[*node.Node](fmt.Errorf("mq: receive failed: %w", err)))
				continue
			}

			path := msg.ID().String()
			if l.cfg.PathFromProperty != "" {
				if v, ok := msg.Properties()[l.cfg.PathFromProperty]; ok {
					path = v
				}
			}

			n := node.New(path, string(msg.Payload()))
			for k, v := range msg.Properties() {
				n.SetMetadata(k, v)
			}

			emit(ctx, out, rstream.Ok(n))
			consumer.Ack(msg)
		}
	}()

	return out
}

func emit(ctx context.Context, out chan<- indexing.NodeResult, r indexing.NodeResult) {
	select {
	case out <- r:
	case <-ctx.Done():
	}
}
