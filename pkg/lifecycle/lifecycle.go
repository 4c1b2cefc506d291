// SPDX-License-Identifier: Apache-2.0

// Package lifecycle drives the migration pipeline from a message-queue
// task, mirroring app.py's consume loop and
// migration_request_lifespan.py's synchronize/failure-handler pair:
// decode and validate the request, run the pipeline, publish a success
// or failure result, and ack/reject-no-requeue accordingly.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/co-codin/dwh-graph-db-migrater/internal/jsonschema"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/apperrors"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/pipeline"
)

// Runner is the subset of *pipeline.Pipeline the Consumer needs.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*migration.Migration, error)
}

// Logger reports Lifecycle activity; kept minimal since the pipeline's
// own components log their own detail.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Consumer subscribes to exchange's task routing key and publishes
// results to the result routing key, one message at a time.
type Consumer struct {
	channel      *amqp.Channel
	exchange     string
	requestQueue string
	resultQueue  string
	runner       Runner
	logger       Logger
}

// New declares the exchange and both queues (idempotent) and binds them
// to the task/result routing keys, mirroring app.py's startup
// declarations.
func New(conn *amqp.Connection, exchange, requestQueue, resultQueue string, runner Runner, logger Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declaring exchange: %w", err)
	}
	for _, binding := range []struct{ queue, key string }{
		{requestQueue, "task"},
		{resultQueue, "result"},
	} {
		if _, err := ch.QueueDeclare(binding.queue, true, false, false, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("declaring queue %s: %w", binding.queue, err)
		}
		if err := ch.QueueBind(binding.queue, binding.key, exchange, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("binding queue %s: %w", binding.queue, err)
		}
	}

	return &Consumer{
		channel:      ch,
		exchange:     exchange,
		requestQueue: requestQueue,
		resultQueue:  resultQueue,
		runner:       runner,
		logger:       logger,
	}, nil
}

// Close releases the underlying channel.
func (c *Consumer) Close() error {
	return c.channel.Close()
}

// Consume runs the receive loop until ctx is canceled. On shutdown the
// in-flight message is allowed to finish; the broker returns any
// unacked message to the queue.
func (c *Consumer) Consume(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.requestQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("starting consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(context.WithoutCancel(ctx), d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var raw any
	if err := json.Unmarshal(d.Body, &raw); err != nil {
		c.reject(d, nil, apperrors.InvalidMigrationRequestError{Reason: "malformed JSON"})
		return
	}
	if err := jsonschema.ValidateMigrationIn(raw); err != nil {
		c.reject(d, nil, apperrors.InvalidMigrationRequestError{Reason: err.Error()})
		return
	}

	var env requestEnvelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		c.reject(d, nil, apperrors.InvalidMigrationRequestError{Reason: "malformed JSON"})
		return
	}

	req := pipeline.Request{
		Name:             env.Name,
		ConnString:       env.ConnString,
		ObjectName:       env.ObjectName,
		ObjectDBPath:     env.ObjectDBPath,
		MigrationPattern: env.MigrationPattern.toClassifyPattern(),
		SourceGuid:       env.SourceGuid,
		SourceName:       env.SourceName,
		ObjectGuid:       env.ObjectGuid,
		SyncType:         env.SyncType,
		IdentityID:       env.IdentityID,
		Model:            env.Model,
	}

	m, err := c.runner.Run(ctx, req)
	if err != nil {
		c.reject(d, &env, err)
		return
	}

	out := m.Out()
	count := m.TableCount

	c.publish(resultEnvelope{
		Status:         "success",
		SourceGuid:     env.SourceGuid,
		SourceName:     env.SourceName,
		ObjectGuid:     env.ObjectGuid,
		SyncType:       env.SyncType,
		IdentityID:     env.IdentityID,
		Model:          env.Model,
		GraphMigration: &out,
		Count:          &count,
	})

	if err := d.Ack(false); err != nil && c.logger != nil {
		c.logger.Warn("failed to ack message", "error", err)
	}
}

// reject publishes a failure result preserving correlation fields (when
// env was decoded far enough to have them) and rejects the message
// without requeueing, avoiding a poison-message loop.
func (c *Consumer) reject(d amqp.Delivery, env *requestEnvelope, cause error) {
	result := resultEnvelope{Status: "failure", Error: cause.Error()}
	if env != nil {
		result.SourceGuid = env.SourceGuid
		result.SourceName = env.SourceName
		result.ObjectGuid = env.ObjectGuid
		result.SyncType = env.SyncType
		result.IdentityID = env.IdentityID
		result.Model = env.Model
	}
	c.publish(result)

	if c.logger != nil {
		c.logger.Warn("rejecting migration request", "error", cause)
	}
	if err := d.Reject(false); err != nil && c.logger != nil {
		c.logger.Warn("failed to reject message", "error", err)
	}
}

func (c *Consumer) publish(result resultEnvelope) {
	body, err := json.Marshal(result)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("failed to marshal result envelope", "error", err)
		}
		return
	}

	err = c.channel.Publish(c.exchange, "result", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("failed to publish result", "error", err)
	}
}
