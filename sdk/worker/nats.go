// Copyright 2025 The sdk-core Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/denjalonso/sdk-core/api"
)

// Conn wraps a NATS connection with the JetStream plumbing the worker needs:
// an activations stream it consumes and a completions stream it publishes to.
type Conn struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// ConnConfig is the dependency-injected interface required for establishing
// connections.
type ConnConfig interface {
	Endpoint() string
	NATSMaxReconnects() int
	NATSReconnectWait() time.Duration
	NATSDrainTimeout() time.Duration
	NATSPingInterval() time.Duration
	NATSMaxPingsOut() int
	// Optional human readable client name; may return empty.
	NATSClientName() string
}

// Connect establishes a NATS connection with the given configuration.
func Connect(cfg ConnConfig, logger *slog.Logger) (*Conn, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil connection config provided")
	}
	logger = defaultLogger(logger)

	clientName := cfg.NATSClientName()
	if clientName == "" {
		clientName = "sdk-core-worker"
	}
	opts := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(cfg.NATSMaxReconnects()),
		nats.ReconnectWait(cfg.NATSReconnectWait()),
		nats.DrainTimeout(cfg.NATSDrainTimeout()),
		nats.PingInterval(cfg.NATSPingInterval()),
		nats.MaxPingsOutstanding(cfg.NATSMaxPingsOut()),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.Endpoint(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Endpoint(), err)
	}
	return WrapConn(nc, logger)
}

// WrapConn adapts an existing NATS connection.
func WrapConn(nc *nats.Conn, logger *slog.Logger) (*Conn, error) {
	if nc == nil {
		return nil, fmt.Errorf("nil NATS connection provided")
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &Conn{nc: nc, js: js, logger: defaultLogger(logger)}, nil
}

func (c *Conn) Close() {
	if c.nc != nil && !c.nc.IsClosed() {
		c.nc.Close()
	}
}

// IsConnected reports whether the underlying connection is live.
func (c *Conn) IsConnected() bool {
	return c.nc != nil && c.nc.IsConnected()
}

// EnsureStreams creates or updates the activation and completion streams.
func (c *Conn) EnsureStreams(ctx context.Context) error {
	streams := []jetstream.StreamConfig{
		{
			Name:      api.ActivationsStream,
			Subjects:  []string{api.ActivationSubjectPrefix + ".>"},
			Retention: jetstream.WorkQueuePolicy,
		},
		{
			Name:     api.CompletionsStream,
			Subjects: []string{api.CompletionSubjectPrefix + ".>"},
		},
	}
	for _, cfg := range streams {
		if err := c.ensureStream(ctx, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) ensureStream(ctx context.Context, cfg jetstream.StreamConfig) error {
	_, err := c.js.Stream(ctx, cfg.Name)
	if err != nil {
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			if _, err := c.js.CreateStream(ctx, cfg); err != nil {
				return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
			}
			return nil
		}
		return fmt.Errorf("failed to get stream %s info: %w", cfg.Name, err)
	}
	if _, err := c.js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to update stream %s: %w", cfg.Name, err)
	}
	return nil
}

// ConsumeActivations binds a durable consumer filtered to the worker's task
// queue and feeds each message to handler. It blocks until ctx is done.
func (c *Conn) ConsumeActivations(ctx context.Context, taskQueue, durableName string, handler func(ctx context.Context, msg jetstream.Msg)) error {
	stream, err := c.js.Stream(ctx, api.ActivationsStream)
	if err != nil {
		return fmt.Errorf("failed to get stream %s: %w", api.ActivationsStream, err)
	}
	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          durableName,
		Durable:       durableName,
		FilterSubject: fmt.Sprintf("%s.%s.>", api.ActivationSubjectPrefix, taskQueue),
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", durableName, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		handler(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming activations: %w", err)
	}
	defer cc.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// PublishCompletion writes an encoded activation completion for the service.
func (c *Conn) PublishCompletion(ctx context.Context, taskQueue string, runID api.RunID, data []byte) error {
	subject := api.CompletionSubject(taskQueue, runID)
	if _, err := c.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish completion to %s: %w", subject, err)
	}
	return nil
}

func defaultLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
