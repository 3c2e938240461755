package db

import (
	"encoding/json"

	"ams-backend/internal/store"
)

type recordRow struct {
	PartitionKey string `db:"partition_key"`
	SortKey      string `db:"sort_key"`
	Timestamp    string `db:"timestamp"`
	Payload      []byte `db:"payload"`
}

func (r recordRow) toRecord() (store.Record, error) {
	rec := store.Record{
		PartitionKey: r.PartitionKey,
		SortKey:      r.SortKey,
		Timestamp:    r.Timestamp,
	}
	if len(r.Payload) > 0 {
		if err := json.Unmarshal(r.Payload, &rec.Payload); err != nil {
			return store.Record{}, err
		}
	}
	return rec, nil
}
