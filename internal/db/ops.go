package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ams-backend/internal/store"

	"github.com/georgysavva/scany/pgxscan"
)

const defaultScanPageSize = 1000

var (
	ErrInsertFailed  = errors.New("insert operation failed")
	ErrSelectFailed  = errors.New("select operation failed")
	ErrMarshalFailed = errors.New("payload marshal failed")
	ErrDecodeFailed  = errors.New("row decode failed")
)

var _ store.Store = (*DB)(nil)

func (db *DB) Put(ctx context.Context, rec store.Record) error {
	const fn = "DB:Put"
	payload := rec.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrMarshalFailed, err)
	}
	_, err = db.pool.Exec(ctx, `
		INSERT INTO device_records (
			partition_key,
			sort_key,
			timestamp,
			payload
		) VALUES ($1, $2, $3, $4)
		ON CONFLICT (partition_key, sort_key)
		DO UPDATE SET timestamp = EXCLUDED.timestamp, payload = EXCLUDED.payload
	`, rec.PartitionKey, rec.SortKey, rec.Timestamp, string(data))
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrInsertFailed, err)
	}
	return nil
}

func (db *DB) Query(ctx context.Context, q store.Query) ([]store.Record, error) {
	const fn = "DB:Query"
	var sb strings.Builder
	sb.WriteString(`
		SELECT
			partition_key,
			sort_key,
			timestamp,
			payload
		FROM device_records
		WHERE partition_key = $1`)
	args := []any{q.PartitionKey}

	switch q.Condition.Op {
	case store.BeginsWith:
		sb.WriteString(" AND sort_key LIKE $2")
		args = append(args, likePrefix(q.Condition.Value))
	case store.Between:
		sb.WriteString(" AND sort_key BETWEEN $2 AND $3")
		args = append(args, q.Condition.Value, q.Condition.Upper)
	}

	if q.Descending {
		sb.WriteString(" ORDER BY sort_key DESC")
	} else {
		sb.WriteString(" ORDER BY sort_key ASC")
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	var rows []recordRow
	if err := pgxscan.Select(ctx, db.pool, &rows, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}
	return toRecords(fn, rows)
}

// Scan walks the table in (partition_key, sort_key) order. The continuation
// token is the key of the last row of the previous page.
func (db *DB) Scan(ctx context.Context, in store.ScanInput) (store.ScanPage, error) {
	const fn = "DB:Scan"
	start, err := store.DecodeToken(in.Token)
	if err != nil {
		return store.ScanPage{}, fmt.Errorf("%s:%w", fn, err)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = db.scanPageSize
	}

	payloadCol := "payload"
	if in.KeysOnly {
		payloadCol = "NULL::jsonb AS payload"
	}
	patterns := make([]string, 0, len(in.Prefixes))
	for _, p := range in.Prefixes {
		patterns = append(patterns, likePrefix(p))
	}
	var startPK, startSK string
	if start != nil {
		startPK, startSK = start.PartitionKey, start.SortKey
	}

	var rows []recordRow
	err = pgxscan.Select(ctx, db.pool, &rows, `
		SELECT
			partition_key,
			sort_key,
			timestamp,
			`+payloadCol+`
		FROM device_records
		WHERE ($1 = '' OR (partition_key, sort_key) > ($1, $2))
		AND (cardinality($3::text[]) = 0 OR sort_key LIKE ANY($3::text[]))
		ORDER BY partition_key, sort_key
		LIMIT $4
	`, startPK, startSK, patterns, limit+1)
	if err != nil {
		return store.ScanPage{}, fmt.Errorf("%s:%w:%w", fn, ErrSelectFailed, err)
	}

	var page store.ScanPage
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextToken = store.EncodeToken(store.Key{PartitionKey: last.PartitionKey, SortKey: last.SortKey})
		rows = rows[:limit]
	}
	page.Records, err = toRecords(fn, rows)
	if err != nil {
		return store.ScanPage{}, err
	}
	return page, nil
}

func toRecords(fn string, rows []recordRow) ([]store.Record, error) {
	out := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("%s:%w:%w", fn, ErrDecodeFailed, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns a literal prefix into a LIKE pattern; "RAW_EVENT#" must
// not match "RAWXEVENT#".
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
