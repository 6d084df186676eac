/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"errors"
	"log/slog"
	"time"

	"github.com/suparena/recipestore/ident"
)

// Option is a functional option shared by Provisioner and EntityStore.
type Option func(*Options)

// Options holds the configuration for a Provisioner or an EntityStore. Options that do not
// apply to a component are ignored by it.
type Options struct {
	logger            *slog.Logger
	clock             func() time.Time
	ids               ident.Allocator
	optimisticLocking bool
	consistentReads   bool
	operationTimeout  time.Duration
	createConcurrency int
	waitForActive     time.Duration
	provisionTimeout  time.Duration
}

func newOptions(opts ...Option) *Options {
	o := &Options{
		logger:            slog.Default(),
		clock:             time.Now,
		ids:               ident.Crypto{},
		createConcurrency: 4,
		provisionTimeout:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) validate() error {
	if o.logger == nil {
		return errors.New("logger must not be nil")
	}
	if o.clock == nil {
		return errors.New("clock must not be nil")
	}
	if o.ids == nil {
		return errors.New("id allocator must not be nil")
	}
	if o.operationTimeout < 0 {
		return errors.New("operation timeout must not be negative")
	}
	if o.createConcurrency <= 0 {
		return errors.New("create concurrency must be greater than zero")
	}
	if o.waitForActive < 0 {
		return errors.New("wait for active must not be negative")
	}
	if o.provisionTimeout <= 0 {
		return errors.New("provision timeout must be greater than zero")
	}
	return nil
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}

// WithClock sets the time source used to stamp LastUpdateTime. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.clock = clock
	}
}

// WithIDAllocator sets the source of new entity ids. Defaults to ident.Crypto.
func WithIDAllocator(a ident.Allocator) Option {
	return func(o *Options) {
		o.ids = a
	}
}

// WithOptimisticLocking makes Save conditional on the stored version for every kind that
// implements storagemodels.Versioned. Off by default, which gives last-write-wins.
func WithOptimisticLocking() Option {
	return func(o *Options) {
		o.optimisticLocking = true
	}
}

// WithConsistentReads requests strongly consistent reads for Retrieve and list queries.
func WithConsistentReads() Option {
	return func(o *Options) {
		o.consistentReads = true
	}
}

// WithOperationTimeout bounds every store operation. Zero, the default, means only the
// caller's context applies.
func WithOperationTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.operationTimeout = d
	}
}

// WithCreateConcurrency caps the number of CreateTable calls in flight. Default 4.
func WithCreateConcurrency(n int) Option {
	return func(o *Options) {
		o.createConcurrency = n
	}
}

// WithWaitForActive makes provisioning wait up to maxWait for each created table to become
// ACTIVE. Zero, the default, does not wait.
func WithWaitForActive(maxWait time.Duration) Option {
	return func(o *Options) {
		o.waitForActive = maxWait
	}
}

// WithProvisionTimeout bounds one provisioning attempt, including any wait for tables to
// become ACTIVE. Default 5 minutes.
func WithProvisionTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.provisionTimeout = d
	}
}
