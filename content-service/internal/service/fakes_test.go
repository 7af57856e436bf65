package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

type fakeAdapter struct {
	kind       domain.EntityKind
	items      []domain.Item
	totalPages int
	err        error
	gate       chan struct{}
	onCall     func()

	calls    atomic.Int32
	mu       sync.Mutex
	lastOpts domain.ListOptions
}

func newFakeAdapter(kind domain.EntityKind, n, totalPages int) *fakeAdapter {
	items := make([]domain.Item, n)
	for i := range items {
		items[i] = domain.Item{
			ID:    fmt.Sprintf("%s-%d", kind, i),
			Kind:  kind,
			Title: fmt.Sprintf("Pajak %s %d", kind, i),
			Slug:  fmt.Sprintf("pajak-%s-%d", kind, i),
		}
	}
	return &fakeAdapter{kind: kind, items: items, totalPages: totalPages}
}

func (f *fakeAdapter) Kind() domain.EntityKind { return f.kind }

func (f *fakeAdapter) GetAll(ctx context.Context, opts domain.ListOptions) (*domain.ListResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastOpts = opts
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if f.onCall != nil {
		f.onCall()
	}

	if f.err != nil {
		return nil, f.err
	}
	data := f.items
	if opts.Limit > 0 && len(data) > opts.Limit {
		data = data[:opts.Limit]
	}
	return &domain.ListResult{Data: data, Total: len(f.items), TotalPages: f.totalPages}, nil
}

func (f *fakeAdapter) opts() domain.ListOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

type invalidationCall struct {
	kind, eventType, key string
}

type fakeInvalidator struct {
	mu      sync.Mutex
	calls   []invalidationCall
	flushed int
}

func (f *fakeInvalidator) ContentChanged(ctx context.Context, kind, eventType, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, invalidationCall{kind, eventType, id})
}

func (f *fakeInvalidator) PageChanged(ctx context.Context, eventType, slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, invalidationCall{"page", eventType, slug})
}

func (f *fakeInvalidator) FlushAll(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed++
}
