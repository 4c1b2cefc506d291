// SPDX-License-Identifier: Apache-2.0

package apply

import "github.com/pterm/pterm"

// Logger reports the Applier's progress through each phase, mirroring
// pkg/migrations.Logger's shape but keyed to the five Data Vault apply
// phases instead of per-operation events.
type Logger interface {
	LogPhaseStart(namespace, phase string, count int)
	LogPhaseComplete(namespace, phase string, count int)
	LogBatch(namespace, phase string, batchIndex, batchSize int)
	Info(msg string, args ...any)
}

type ptermLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// NewLogger returns a Logger backed by pterm's structured logger.
func NewLogger() Logger {
	return &ptermLogger{logger: pterm.DefaultLogger}
}

// NewNoopLogger returns a Logger that discards everything, for tests.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *ptermLogger) LogPhaseStart(namespace, phase string, count int) {
	l.logger.Info("starting apply phase", l.logger.Args("namespace", namespace, "phase", phase, "count", count))
}

func (l *ptermLogger) LogPhaseComplete(namespace, phase string, count int) {
	l.logger.Info("completed apply phase", l.logger.Args("namespace", namespace, "phase", phase, "count", count))
}

func (l *ptermLogger) LogBatch(namespace, phase string, batchIndex, batchSize int) {
	l.logger.Debug("applying batch", l.logger.Args("namespace", namespace, "phase", phase, "batch_index", batchIndex, "batch_size", batchSize))
}

func (l *ptermLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args))
}

func (l *noopLogger) LogPhaseStart(namespace, phase string, count int)            {}
func (l *noopLogger) LogPhaseComplete(namespace, phase string, count int)         {}
func (l *noopLogger) LogBatch(namespace, phase string, batchIndex, batchSize int) {}
func (l *noopLogger) Info(msg string, args ...any)                               {}
