package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
)

// ErrInjected is the cause wrapped by every failure of a FailingDriver.
var ErrInjected = errors.New("injected failure")

// FailingDriver wraps a storage.Driver and fails the operations named in
// FailOn with storage.ErrUnavailable. Calls counts every call by name.
type FailingDriver struct {
	storage.Driver

	mu     sync.Mutex
	FailOn map[string]bool
	Calls  map[string]int
}

// NewFailingDriver wraps d. The returned driver fails on the given
// operation names, e.g. "GetDocument" or "AddNeighbors".
func NewFailingDriver(d storage.Driver, failOn ...string) *FailingDriver {
	f := &FailingDriver{
		Driver: d,
		FailOn: make(map[string]bool),
		Calls:  make(map[string]int),
	}
	for _, op := range failOn {
		f.FailOn[op] = true
	}
	return f
}

// CallCount returns the number of calls of op.
func (f *FailingDriver) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

func (f *FailingDriver) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[op]++
	if f.FailOn[op] {
		return storage.Unavailable(op, ErrInjected)
	}
	return nil
}

func (f *FailingDriver) PutDocuments(ctx context.Context, docs []document.Document) error {
	if err := f.check("PutDocuments"); err != nil {
		return err
	}
	return f.Driver.PutDocuments(ctx, docs)
}

func (f *FailingDriver) GetDocument(ctx context.Context, id int64) (*document.Document, error) {
	if err := f.check("GetDocument"); err != nil {
		return nil, err
	}
	return f.Driver.GetDocument(ctx, id)
}

func (f *FailingDriver) GetDocuments(ctx context.Context, ids []int64) ([]document.Document, error) {
	if err := f.check("GetDocuments"); err != nil {
		return nil, err
	}
	return f.Driver.GetDocuments(ctx, ids)
}

func (f *FailingDriver) ListDocuments(ctx context.Context, filter storage.Filter) ([]document.Document, error) {
	if err := f.check("ListDocuments"); err != nil {
		return nil, err
	}
	return f.Driver.ListDocuments(ctx, filter)
}

func (f *FailingDriver) AddNeighbors(ctx context.Context, id int64, neighbors []int64) error {
	if err := f.check("AddNeighbors"); err != nil {
		return err
	}
	return f.Driver.AddNeighbors(ctx, id, neighbors)
}

func (f *FailingDriver) Neighbors(ctx context.Context, id int64) ([]int64, error) {
	if err := f.check("Neighbors"); err != nil {
		return nil, err
	}
	return f.Driver.Neighbors(ctx, id)
}

func (f *FailingDriver) MatchTokens(ctx context.Context, lang, query string, mode storage.MatchMode) ([]string, error) {
	if err := f.check("MatchTokens"); err != nil {
		return nil, err
	}
	return f.Driver.MatchTokens(ctx, lang, query, mode)
}

func (f *FailingDriver) TokenScores(ctx context.Context, lang string, tokens []string) (map[int64]document.TFIDFProfile, error) {
	if err := f.check("TokenScores"); err != nil {
		return nil, err
	}
	return f.Driver.TokenScores(ctx, lang, tokens)
}

func (f *FailingDriver) TFIDFProfiles(ctx context.Context, lang string, ids []int64) (map[int64]document.TFIDFProfile, error) {
	if err := f.check("TFIDFProfiles"); err != nil {
		return nil, err
	}
	return f.Driver.TFIDFProfiles(ctx, lang, ids)
}
