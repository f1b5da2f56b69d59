package memory

import (
	"context"
	"sync"

	"bbcstats/internal/core"
	"bbcstats/internal/source"
)

var _ source.Fetcher = (*Store)(nil)

// Store serves a dataset held in process. An error set with Fail is returned
// by every Fetch until it is cleared.
type Store struct {
	mu    sync.Mutex
	ds    core.Dataset
	err   error
	calls int
}

func New(ds core.Dataset) *Store {
	return &Store{ds: ds}
}

// NewFromJSON decodes a data document into a Store.
func NewFromJSON(doc []byte) (*Store, error) {
	ds, err := core.DecodeDataset(doc)
	if err != nil {
		return nil, err
	}
	return New(ds), nil
}

// Fetch returns the stored dataset.
func (s *Store) Fetch(ctx context.Context) (core.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return core.Dataset{}, err
	}
	if s.err != nil {
		return core.Dataset{}, s.err
	}
	return s.ds, nil
}

// Fail makes subsequent fetches return err. A nil err restores the dataset.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls reports how many times Fetch ran.
func (s *Store) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Sample is the built-in dataset used by the memory backend.
func Sample() core.Dataset {
	return core.NewDataset(
		core.Entry{Key: "2018-01", Record: core.DayRecord{BBCOne: 412, BBCTwo: 298, BBCThree: 120, BBCFour: 95, BBCNews24: 640, CBBC: 210, CBeebies: 233}},
		core.Entry{Key: "2018-02", Record: core.DayRecord{BBCOne: 388, BBCTwo: 276, BBCThree: 131, BBCFour: 88, BBCNews24: 602, CBBC: 198, CBeebies: 241}},
		core.Entry{Key: "2018-03", Record: core.DayRecord{BBCOne: 430, BBCTwo: 301, BBCThree: 118, BBCFour: 102, BBCNews24: 655, CBBC: 205, CBeebies: 229}},
		core.Entry{Key: "2018-04", Record: core.DayRecord{BBCOne: 405, BBCTwo: 289, BBCThree: 126, BBCFour: 97, BBCNews24: 618, CBBC: 201, CBeebies: 236}},
	)
}
