package state

import (
	"context"
	"fmt"

	"github.com/katana-go/katana/katanalib/kv"
)

// Factory is the ProviderFactory implementation backed by a katanalib/kv
// RoDB: Latest opens a read-only snapshot answered directly against the
// current-state tables, AtBlock opens one scoped to the History tables up
// to the requested block.
type Factory struct {
	db kv.RoDB
}

func NewFactory(db kv.RoDB) *Factory {
	return &Factory{db: db}
}

func (f *Factory) Latest(ctx context.Context) (StateProvider, error) {
	tx, err := f.db.BeginRo(ctx)
	if err != nil {
		return nil, fmt.Errorf("state: begin ro tx: %w", err)
	}
	return &closingProvider{StateProvider: &latestProvider{tx: tx}, tx: tx}, nil
}

func (f *Factory) AtBlock(ctx context.Context, blockNumber uint64) (StateProvider, error) {
	tx, err := f.db.BeginRo(ctx)
	if err != nil {
		return nil, fmt.Errorf("state: begin ro tx: %w", err)
	}
	r := &historyReader{tx: tx, blockNumber: blockNumber, latest: &latestProvider{tx: tx}}
	return &closingProvider{StateProvider: r, tx: tx}, nil
}

// closingProvider rolls back its transaction once the caller is done with
// it; StateProvider itself exposes no Close, so callers that need explicit
// lifetime control should type-assert to interface{ Close() }.
type closingProvider struct {
	StateProvider
	tx kv.Tx
}

func (p *closingProvider) Close() { p.tx.Rollback() }
