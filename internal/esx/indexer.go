package esx

import (
	"context"
	"errors"

	"jrm-intake-api/internal/intake"
)

// Indexer keeps one index in step with the intake store.
type Indexer struct {
	es    *Client
	index string
	store *intake.Store
}

func NewIndexer(es *Client, index string, store *intake.Store) *Indexer {
	return &Indexer{es: es, index: index, store: store}
}

// Sync reindexes the intake stored under id, or removes its document when
// the intake no longer exists.
func (ix *Indexer) Sync(ctx context.Context, id string) error {
	row, err := ix.store.GetIntake(ctx, id)
	if errors.Is(err, intake.ErrIntakeNotFound) {
		return DeleteIntake(ctx, ix.es, ix.index, id)
	}
	if err != nil {
		return err
	}
	return IndexIntake(ctx, ix.es, ix.index, DocFromRow(row))
}

// Remove deletes the document for id.
func (ix *Indexer) Remove(ctx context.Context, id string) error {
	return DeleteIntake(ctx, ix.es, ix.index, id)
}

// Reindex pushes every stored intake in one bulk request.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	if err := EnsureIndex(ctx, ix.es, ix.index); err != nil {
		return 0, err
	}
	rows, err := ix.store.ListIntakes(ctx)
	if err != nil {
		return 0, err
	}
	docs := make([]IntakeDoc, len(rows))
	for i, r := range rows {
		docs[i] = DocFromRow(r)
	}
	return BulkIndex(ctx, ix.es, ix.index, docs)
}
