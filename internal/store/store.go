package store

import (
	"context"
	"strings"
)

// Record is one append-only entry of the device table. Payload holds the
// type specific attributes; for RAW_EVENT and ERROR records it carries the
// original event serialized verbatim.
type Record struct {
	PartitionKey string         `json:"pk"`
	SortKey      string         `json:"sk"`
	Timestamp    string         `json:"timestamp"`
	Payload      map[string]any `json:"payload,omitempty"`
}

type ConditionOp int

const (
	// Any matches every sort key of the partition.
	Any ConditionOp = iota
	BeginsWith
	Between
)

// Condition restricts the sort keys returned by Query.
type Condition struct {
	Op    ConditionOp
	Value string
	Upper string
}

func SortKeyBeginsWith(prefix string) Condition {
	return Condition{Op: BeginsWith, Value: prefix}
}

// SortKeyBetween matches lower <= sk <= upper, byte-wise.
func SortKeyBetween(lower, upper string) Condition {
	return Condition{Op: Between, Value: lower, Upper: upper}
}

func (c Condition) Match(sortKey string) bool {
	switch c.Op {
	case BeginsWith:
		return strings.HasPrefix(sortKey, c.Value)
	case Between:
		return sortKey >= c.Value && sortKey <= c.Upper
	default:
		return true
	}
}

type Query struct {
	PartitionKey string
	Condition    Condition
	Descending   bool
	// Limit bounds the number of records returned; 0 returns every match.
	Limit int
}

type ScanInput struct {
	// Prefixes filters on sort key prefixes, OR'ed together. Empty scans everything.
	Prefixes []string
	// KeysOnly projects partition key, sort key and timestamp only.
	KeysOnly bool
	// Limit is the page size hint; backends apply their own default on 0.
	Limit int
	Token string
}

// MatchPrefixes reports whether the sort key passes the scan filter.
func (in ScanInput) MatchPrefixes(sortKey string) bool {
	if len(in.Prefixes) == 0 {
		return true
	}
	for _, p := range in.Prefixes {
		if strings.HasPrefix(sortKey, p) {
			return true
		}
	}
	return false
}

type ScanPage struct {
	Records []Record
	// NextToken is empty once the table is exhausted.
	NextToken string
}

// Store is the wide-column table the core reads and appends to. Backends
// give per-record atomicity only; a Put with an existing key replaces it.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Scan(ctx context.Context, in ScanInput) (ScanPage, error)
}

// ScanAll follows continuation tokens until the scan is exhausted.
func ScanAll(ctx context.Context, s Store, in ScanInput, fn func(Record)) (pages int, err error) {
	for {
		page, err := s.Scan(ctx, in)
		if err != nil {
			return pages, err
		}
		pages++
		for _, rec := range page.Records {
			fn(rec)
		}
		if page.NextToken == "" {
			return pages, nil
		}
		in.Token = page.NextToken
	}
}
