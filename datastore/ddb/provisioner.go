/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	serrors "github.com/suparena/recipestore/errors"
	"github.com/suparena/recipestore/registry"
	"github.com/suparena/recipestore/storagemodels"
)

const provisionKey = "provision"

// Provisioner makes sure every table in a catalog exists. A successful run is remembered for
// the lifetime of the Provisioner; a failed run is not, so the next caller tries again.
// Concurrent callers share one in-flight attempt.
type Provisioner struct {
	client  API
	catalog *registry.Catalog
	opts    *Options
	log     *slog.Logger

	group singleflight.Group
	done  atomic.Bool
}

// NewProvisioner returns a provisioner for the tables of catalog.
func NewProvisioner(client API, catalog *registry.Catalog, opts ...Option) (*Provisioner, error) {
	if client == nil {
		return nil, errors.New("ddb: client must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("ddb: catalog must not be nil")
	}
	o := newOptions(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &Provisioner{
		client:  client,
		catalog: catalog,
		opts:    o,
		log:     o.logger.With(slog.String("component", "provisioner")),
	}, nil
}

// EnsureProvisioned reports whether every catalog table exists, creating missing ones on the
// first call. It never returns an error; failures are logged and reported as false.
func (p *Provisioner) EnsureProvisioned(ctx context.Context) bool {
	if err := p.Provision(ctx); err != nil {
		p.log.Warn("schema provisioning failed", faultAttrs(err)...)
		return false
	}
	return true
}

// Provision is the error-returning form of EnsureProvisioned. Errors are
// *errors.ProvisioningError.
//
// The attempt runs detached from ctx and is bounded by the provision timeout instead, so a
// caller that gives up does not fail the callers that joined it. A caller whose ctx ends
// first returns early while the attempt carries on.
func (p *Provisioner) Provision(ctx context.Context) error {
	if p.done.Load() {
		return nil
	}
	ch := p.group.DoChan(provisionKey, func() (any, error) {
		// A caller may enter after the previous attempt finished successfully.
		if p.done.Load() {
			return nil, nil
		}
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.provisionTimeout)
		defer cancel()
		if err := p.run(runCtx); err != nil {
			return nil, err
		}
		p.done.Store(true)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			p.log.Debug("joined in-flight provisioning attempt")
		}
		return res.Err
	case <-ctx.Done():
		return serrors.NewProvisioningError(p.catalog.TableNames(), ctx.Err())
	}
}

// Ready reports whether a provisioning run has succeeded.
func (p *Provisioner) Ready() bool {
	return p.done.Load()
}

// Reset forgets a previous success so the next call provisions again. Intended for tests.
func (p *Provisioner) Reset() {
	p.done.Store(false)
}

func (p *Provisioner) run(ctx context.Context) error {
	start := time.Now()

	existing, err := p.listTables(ctx)
	if err != nil {
		return serrors.NewProvisioningError(p.catalog.TableNames(), err)
	}

	var missing []storagemodels.TableSchema
	for _, s := range p.catalog.Entries() {
		if _, ok := existing[s.TableName]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		p.log.Debug("all tables present", slog.Int("tables", p.catalog.Len()))
		return nil
	}

	var (
		mu     sync.Mutex
		failed []string
		errs   []error
		g      errgroup.Group
	)
	g.SetLimit(p.opts.createConcurrency)
	for _, s := range missing {
		g.Go(func() error {
			if err := p.createTable(ctx, s); err != nil {
				mu.Lock()
				failed = append(failed, s.TableName)
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		sort.Strings(failed)
		return serrors.NewProvisioningError(failed, errors.Join(errs...))
	}

	p.log.Info("schema provisioned",
		slog.Int("created", len(missing)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (p *Provisioner) listTables(ctx context.Context) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	paginator := dynamodb.NewListTablesPaginator(p.client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, serrors.NewBackendError("ListTables", "*", isRetryableError(err), err)
		}
		for _, name := range page.TableNames {
			names[name] = struct{}{}
		}
	}
	return names, nil
}

func (p *Provisioner) createTable(ctx context.Context, s storagemodels.TableSchema) error {
	log := p.log.With(slog.String("table", s.TableName), slog.String("kind", s.Kind))

	out, err := p.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:             aws.String(s.TableName),
		BillingMode:           types.BillingModeProvisioned,
		AttributeDefinitions:  s.AttributeDefinitions(),
		KeySchema:             s.KeySchema(),
		ProvisionedThroughput: s.ProvisionedThroughput(),
	})
	switch {
	case isResourceInUse(err):
		// Created concurrently by another process.
		log.Debug("table already being created")
	case err != nil:
		log.Error("create table failed", faultAttrs(err)...)
		return serrors.NewBackendError("CreateTable", s.TableName, isRetryableError(err), err)
	default:
		status := types.TableStatusCreating
		if out != nil && out.TableDescription != nil {
			status = out.TableDescription.TableStatus
		}
		log.Info("table created", slog.String("status", string(status)))
	}

	if p.opts.waitForActive <= 0 {
		return nil
	}
	waiter := dynamodb.NewTableExistsWaiter(p.client, func(o *dynamodb.TableExistsWaiterOptions) {
		o.MinDelay = time.Second
		o.MaxDelay = 20 * time.Second
	})
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.TableName)}, p.opts.waitForActive); err != nil {
		log.Error("table did not become active", slog.String("error", err.Error()))
		return serrors.NewBackendError("DescribeTable", s.TableName, false, err)
	}
	return nil
}
