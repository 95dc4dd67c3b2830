package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/crct-xyz/api/internal/cursor"
)

// Item is a stored record in its untyped attribute representation.
type Item map[string]types.AttributeValue

// DynamoClient is the subset of the DynamoDB client the store uses.
// It is satisfied by *dynamodb.Client and by test doubles.
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store provides generic operations over named, schemaless collections.
type Store struct {
	client   DynamoClient
	config   Config
	registry *Registry
	now      func() time.Time
}

// New creates a new Store instance.
func New(client DynamoClient, config Config, registry *Registry) *Store {
	config.validate()
	if registry == nil {
		registry = NewRegistry()
	}
	return &Store{
		client:   client,
		config:   config,
		registry: registry,
		now:      time.Now,
	}
}

// Registry returns the collection schema registry.
func (s *Store) Registry() *Registry {
	return s.registry
}

// S builds a string attribute value.
func S(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

// N builds a number attribute value from an integer.
func N(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

// schema resolves the registered schema for a collection.
func (s *Store) schema(collection string) (Schema, error) {
	sch, ok := s.registry.Lookup(collection)
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return sch, nil
}

// Get retrieves a record by key, returning ErrNotFound if missing.
func (s *Store) Get(ctx context.Context, collection string, key types.AttributeValue) (Item, error) {
	sch, err := s.schema(collection)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.tableFor(collection)),
		Key:       map[string]types.AttributeValue{sch.KeyAttr: key},
	})
	if err != nil {
		return nil, classify(err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return Item(result.Item), nil
}

// PutOptions configures Put behavior.
type PutOptions struct {
	// IfNotExists makes the write conditional on the key being absent.
	// Under concurrent creation attempts with the same key exactly one
	// caller succeeds; the rest receive ErrAlreadyExists.
	IfNotExists bool
}

// Put writes a full record. The item must carry the collection's key
// attribute. The managed created_at / updated_at attributes are set on the
// item in place: updated_at on every call, created_at only when the caller
// has not supplied one.
func (s *Store) Put(ctx context.Context, collection string, item Item, opts PutOptions) error {
	sch, err := s.schema(collection)
	if err != nil {
		return err
	}
	if _, ok := item[sch.KeyAttr]; !ok {
		return fmt.Errorf("store: item for %q is missing key attribute %q", collection, sch.KeyAttr)
	}

	nowISO := s.now().UTC().Format(time.RFC3339)
	if _, ok := item["created_at"]; !ok {
		item["created_at"] = &types.AttributeValueMemberS{Value: nowISO}
	}
	item["updated_at"] = &types.AttributeValueMemberS{Value: nowISO}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.config.tableFor(collection)),
		Item:      item,
	}
	if opts.IfNotExists {
		input.ConditionExpression = aws.String("attribute_not_exists(#k)")
		input.ExpressionAttributeNames = map[string]string{"#k": sch.KeyAttr}
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAlreadyExists
		}
		return classify(err)
	}
	return nil
}

// Update applies only the supplied field deltas to an existing record and
// returns the updated record. The key attribute and the managed created_at
// attribute are never touched; updated_at is refreshed. Returns ErrNotFound
// if the key does not exist (no upsert-on-update).
func (s *Store) Update(ctx context.Context, collection string, key types.AttributeValue, deltas Item) (Item, error) {
	sch, err := s.schema(collection)
	if err != nil {
		return nil, err
	}

	nowISO := s.now().UTC().Format(time.RFC3339)

	var setClauses []string
	exprNames := map[string]string{
		"#k":          sch.KeyAttr,
		"#updated_at": "updated_at",
	}
	exprValues := map[string]types.AttributeValue{
		":updated_at": &types.AttributeValueMemberS{Value: nowISO},
	}

	i := 0
	for k, v := range deltas {
		// Skip managed fields
		if k == sch.KeyAttr || k == "created_at" || k == "updated_at" {
			continue
		}
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		exprNames[nameKey] = k
		exprValues[valueKey] = v
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
		i++
	}
	setClauses = append(setClauses, "#updated_at = :updated_at")

	updateExpr := "SET " + joinStrings(setClauses, ", ")

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.tableFor(collection)),
		Key:                       map[string]types.AttributeValue{sch.KeyAttr: key},
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrNotFound
		}
		return nil, classify(err)
	}
	return Item(result.Attributes), nil
}

// Delete removes a record by key. Returns ErrNotFound if the key is absent.
func (s *Store) Delete(ctx context.Context, collection string, key types.AttributeValue) error {
	sch, err := s.schema(collection)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(s.config.tableFor(collection)),
		Key:                      map[string]types.AttributeValue{sch.KeyAttr: key},
		ConditionExpression:      aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": sch.KeyAttr},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return classify(err)
	}
	return nil
}

// Filter restricts a scan to records whose attribute equals the value.
type Filter struct {
	Attr  string
	Value types.AttributeValue
}

// ScanOptions configures Scan behavior.
type ScanOptions struct {
	// Filter is an optional single attribute/value equality filter.
	// A filter on an attribute outside the collection's known attribute
	// set degrades to a plain scan.
	Filter *Filter

	// Limit caps the number of records returned per page (0 = no limit).
	Limit int32

	// Cursor resumes a prior scan from its returned position.
	Cursor string
}

// Scan reads a page of records from a collection. It returns the records
// and an opaque cursor for the next page ("" when the scan is exhausted).
// Concurrent writes may be observed partially; the scan is not a snapshot.
func (s *Store) Scan(ctx context.Context, collection string, opts ScanOptions) ([]Item, string, error) {
	sch, err := s.schema(collection)
	if err != nil {
		return nil, "", err
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(s.config.tableFor(collection)),
	}
	if opts.Limit > 0 {
		input.Limit = aws.Int32(opts.Limit)
	}
	if opts.Filter != nil && sch.knownAttr(opts.Filter.Attr) {
		input.FilterExpression = aws.String("#f = :v")
		input.ExpressionAttributeNames = map[string]string{"#f": opts.Filter.Attr}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{":v": opts.Filter.Value}
	}
	if opts.Cursor != "" {
		startKey, err := cursor.Decode(opts.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		input.ExclusiveStartKey = startKey
	}

	result, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, "", classify(err)
	}

	items := make([]Item, 0, len(result.Items))
	for _, raw := range result.Items {
		items = append(items, Item(raw))
	}

	next, err := cursor.Encode(result.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return items, next, nil
}

// classify maps transient store faults to ErrUnavailable so callers can
// distinguish retryable failures from terminal ones.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultServer {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// joinStrings joins strings with a separator (avoiding strings package import).
func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for _, s := range strs[1:] {
		result += sep + s
	}
	return result
}
