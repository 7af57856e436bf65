package adapter

import (
	"context"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/repository"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
)

// EntityAdapter is the uniform per-kind listing contract.
type EntityAdapter interface {
	Kind() domain.EntityKind
	GetAll(ctx context.Context, opts domain.ListOptions) (*domain.ListResult, error)
}

type storeAdapter struct {
	kind   domain.EntityKind
	reader repository.ContentReader
}

// New binds a content reader to one kind.
func New(kind domain.EntityKind, reader repository.ContentReader) EntityAdapter {
	return &storeAdapter{kind: kind, reader: reader}
}

func (a *storeAdapter) Kind() domain.EntityKind {
	return a.kind
}

func (a *storeAdapter) GetAll(ctx context.Context, opts domain.ListOptions) (*domain.ListResult, error) {
	return a.reader.GetAll(ctx, a.kind, opts)
}

type resilientAdapter struct {
	inner  EntityAdapter
	policy resilience.Policy
}

// Resilient guards every GetAll of inner with policy: retry outside,
// timeout per attempt.
func Resilient(inner EntityAdapter, policy resilience.Policy) EntityAdapter {
	return &resilientAdapter{inner: inner, policy: policy}
}

func (a *resilientAdapter) Kind() domain.EntityKind {
	return a.inner.Kind()
}

func (a *resilientAdapter) GetAll(ctx context.Context, opts domain.ListOptions) (*domain.ListResult, error) {
	return resilience.Do(ctx, a.policy, func(ctx context.Context) (*domain.ListResult, error) {
		return a.inner.GetAll(ctx, opts)
	})
}

// NewResilientSet returns one guarded adapter per kind, in presentation order.
func NewResilientSet(reader repository.ContentReader, policy resilience.Policy) []EntityAdapter {
	kinds := domain.Kinds()
	adapters := make([]EntityAdapter, len(kinds))
	for i, k := range kinds {
		adapters[i] = Resilient(New(k, reader), policy)
	}
	return adapters
}
