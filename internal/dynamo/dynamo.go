package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ams-backend/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of the key columns.
const (
	AttrPK        = "PK"
	AttrSK        = "SK"
	AttrTimestamp = "timestamp"
)

var (
	ErrPutFailed     = errors.New("put item failed")
	ErrQueryFailed   = errors.New("query failed")
	ErrScanFailed    = errors.New("scan failed")
	ErrMarshalFailed = errors.New("item marshal failed")
)

// Client is the part of the DynamoDB API the table needs.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var (
	_ Client      = (*dynamodb.Client)(nil)
	_ store.Store = (*Table)(nil)
)

type Config struct {
	TableName string
	Region    string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// Table stores records in a PK/SK table. Payload attributes are written as
// top level item attributes next to the keys.
type Table struct {
	client    Client
	tableName string
}

func New(client Client, tableName string) *Table {
	return &Table{client: client, tableName: tableName}
}

// Connect loads the default AWS configuration chain and builds a Table.
func Connect(ctx context.Context, cfg Config) (*Table, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	slog.InfoContext(ctx, "DynamoDB client ready", "table", cfg.TableName, "region", awsCfg.Region)
	return New(client, cfg.TableName), nil
}

func (t *Table) Put(ctx context.Context, rec store.Record) error {
	const fn = "Dynamo:Put"
	item, err := attributevalue.MarshalMap(rec.Payload)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrMarshalFailed, err)
	}
	if item == nil {
		item = map[string]types.AttributeValue{}
	}
	item[AttrPK] = &types.AttributeValueMemberS{Value: rec.PartitionKey}
	item[AttrSK] = &types.AttributeValueMemberS{Value: rec.SortKey}
	if rec.Timestamp != "" {
		item[AttrTimestamp] = &types.AttributeValueMemberS{Value: rec.Timestamp}
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrPutFailed, err)
	}
	return nil
}

// Query follows LastEvaluatedKey until the limit is reached or the key
// range is exhausted.
func (t *Table) Query(ctx context.Context, q store.Query) ([]store.Record, error) {
	const fn = "Dynamo:Query"
	keyCond := "#pk = :pk"
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: q.PartitionKey},
	}
	names := map[string]string{"#pk": AttrPK}
	switch q.Condition.Op {
	case store.BeginsWith:
		keyCond += " AND begins_with(#sk, :sk)"
		names["#sk"] = AttrSK
		values[":sk"] = &types.AttributeValueMemberS{Value: q.Condition.Value}
	case store.Between:
		keyCond += " AND #sk BETWEEN :lo AND :hi"
		names["#sk"] = AttrSK
		values[":lo"] = &types.AttributeValueMemberS{Value: q.Condition.Value}
		values[":hi"] = &types.AttributeValueMemberS{Value: q.Condition.Upper}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(t.tableName),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(!q.Descending),
	}

	out := []store.Record{}
	for {
		if q.Limit > 0 {
			input.Limit = aws.Int32(int32(q.Limit - len(out)))
		}
		resp, err := t.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%s:%w:%w", fn, ErrQueryFailed, err)
		}
		for _, item := range resp.Items {
			rec, err := fromItem(item)
			if err != nil {
				return nil, fmt.Errorf("%s:%w:%w", fn, ErrMarshalFailed, err)
			}
			out = append(out, rec)
		}
		if len(resp.LastEvaluatedKey) == 0 || (q.Limit > 0 && len(out) >= q.Limit) {
			return out, nil
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
}

func (t *Table) Scan(ctx context.Context, in store.ScanInput) (store.ScanPage, error) {
	const fn = "Dynamo:Scan"
	input := &dynamodb.ScanInput{
		TableName: aws.String(t.tableName),
	}
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	if in.KeysOnly {
		input.ProjectionExpression = aws.String("#pk, #sk, #ts")
		names["#pk"], names["#sk"], names["#ts"] = AttrPK, AttrSK, AttrTimestamp
	}
	if len(in.Prefixes) > 0 {
		names["#sk"] = AttrSK
		clauses := make([]string, 0, len(in.Prefixes))
		for i, p := range in.Prefixes {
			ph := fmt.Sprintf(":prefix%d", i)
			clauses = append(clauses, fmt.Sprintf("begins_with(#sk, %s)", ph))
			values[ph] = &types.AttributeValueMemberS{Value: p}
		}
		input.FilterExpression = aws.String(strings.Join(clauses, " OR "))
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(int32(in.Limit))
	}
	start, err := store.DecodeToken(in.Token)
	if err != nil {
		return store.ScanPage{}, fmt.Errorf("%s:%w", fn, err)
	}
	if start != nil {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			AttrPK: &types.AttributeValueMemberS{Value: start.PartitionKey},
			AttrSK: &types.AttributeValueMemberS{Value: start.SortKey},
		}
	}

	resp, err := t.client.Scan(ctx, input)
	if err != nil {
		return store.ScanPage{}, fmt.Errorf("%s:%w:%w", fn, ErrScanFailed, err)
	}
	var page store.ScanPage
	for _, item := range resp.Items {
		rec, err := fromItem(item)
		if err != nil {
			return store.ScanPage{}, fmt.Errorf("%s:%w:%w", fn, ErrMarshalFailed, err)
		}
		if in.KeysOnly {
			rec.Payload = nil
		}
		page.Records = append(page.Records, rec)
	}
	if len(resp.LastEvaluatedKey) > 0 {
		var key struct {
			PK string `dynamodbav:"PK"`
			SK string `dynamodbav:"SK"`
		}
		if err := attributevalue.UnmarshalMap(resp.LastEvaluatedKey, &key); err != nil {
			return store.ScanPage{}, fmt.Errorf("%s:%w:%w", fn, ErrMarshalFailed, err)
		}
		page.NextToken = store.EncodeToken(store.Key{PartitionKey: key.PK, SortKey: key.SK})
	}
	return page, nil
}

func fromItem(item map[string]types.AttributeValue) (store.Record, error) {
	var attrs map[string]any
	if err := attributevalue.UnmarshalMap(item, &attrs); err != nil {
		return store.Record{}, err
	}
	rec := store.Record{}
	rec.PartitionKey, _ = attrs[AttrPK].(string)
	rec.SortKey, _ = attrs[AttrSK].(string)
	rec.Timestamp, _ = attrs[AttrTimestamp].(string)
	delete(attrs, AttrPK)
	delete(attrs, AttrSK)
	delete(attrs, AttrTimestamp)
	if len(attrs) > 0 {
		rec.Payload = attrs
	}
	return rec, nil
}
