package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid continuation token")

// Key is the primary key of a record, used as a scan continuation point.
type Key struct {
	PartitionKey string `json:"pk"`
	SortKey      string `json:"sk"`
}

func EncodeToken(k Key) string {
	b, _ := json.Marshal(k)
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeToken(v string) (*Key, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var k Key
	if err := json.Unmarshal(b, &k); err != nil || k.PartitionKey == "" {
		return nil, ErrInvalidToken
	}
	return &k, nil
}

// After reports whether k sorts strictly after other in (pk, sk) order.
func (k Key) After(other Key) bool {
	if k.PartitionKey != other.PartitionKey {
		return k.PartitionKey > other.PartitionKey
	}
	return k.SortKey > other.SortKey
}
