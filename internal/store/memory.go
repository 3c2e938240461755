package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

const defaultScanLimit = 1000

// Memory is an ordered in-process Store for local runs and tests.
type Memory struct {
	mu         sync.RWMutex
	partitions map[string]map[string]Record
}

func NewMemory() *Memory {
	return &Memory{partitions: make(map[string]map[string]Record)}
}

func (m *Memory) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partitions[rec.PartitionKey]
	if !ok {
		p = make(map[string]Record)
		m.partitions[rec.PartitionKey] = p
	}
	rec.Payload = maps.Clone(rec.Payload)
	p[rec.SortKey] = rec
	return nil
}

func (m *Memory) Query(_ context.Context, q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := m.partitions[q.PartitionKey]
	keys := slices.Sorted(maps.Keys(p))
	if q.Descending {
		slices.Reverse(keys)
	}
	out := []Record{}
	for _, sk := range keys {
		if !q.Condition.Match(sk) {
			continue
		}
		rec := p[sk]
		rec.Payload = maps.Clone(rec.Payload)
		out = append(out, rec)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) Scan(_ context.Context, in ScanInput) (ScanPage, error) {
	start, err := DecodeToken(in.Token)
	if err != nil {
		return ScanPage{}, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultScanLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var page ScanPage
	var last Key
	for _, pk := range slices.Sorted(maps.Keys(m.partitions)) {
		p := m.partitions[pk]
		for _, sk := range slices.Sorted(maps.Keys(p)) {
			k := Key{PartitionKey: pk, SortKey: sk}
			if start != nil && !k.After(*start) {
				continue
			}
			if len(page.Records) == limit {
				page.NextToken = EncodeToken(last)
				return page, nil
			}
			last = k
			if !in.MatchPrefixes(sk) {
				continue
			}
			rec := p[sk]
			if in.KeysOnly {
				rec.Payload = nil
			} else {
				rec.Payload = maps.Clone(rec.Payload)
			}
			page.Records = append(page.Records, rec)
		}
	}
	return page, nil
}
