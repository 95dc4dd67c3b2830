// Package dynamofake provides an in-memory DynamoDB client double with
// real conditional-write semantics, sufficient for the expressions the
// store layer emits. It is intended for tests only.
package dynamofake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is an in-memory stand-in for *dynamodb.Client.
type Client struct {
	mu     sync.Mutex
	tables map[string]*table

	// Fail, when set, is returned verbatim by every operation. Use it to
	// simulate transient store failures.
	Fail error
}

type table struct {
	keyAttr string
	items   map[string]map[string]types.AttributeValue
}

// New creates an empty fake client.
func New() *Client {
	return &Client{tables: make(map[string]*table)}
}

// AddTable registers a table with its key attribute. Operations against
// unregistered tables fail.
func (c *Client) AddTable(name, keyAttr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[name] = &table{
		keyAttr: keyAttr,
		items:   make(map[string]map[string]types.AttributeValue),
	}
}

// Len reports the number of items in a table.
func (c *Client) Len(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tables[name]; ok {
		return len(t.items)
	}
	return 0
}

func (c *Client) table(name *string) (*table, error) {
	if name == nil {
		return nil, fmt.Errorf("dynamofake: missing table name")
	}
	t, ok := c.tables[*name]
	if !ok {
		return nil, fmt.Errorf("dynamofake: table %q does not exist", *name)
	}
	return t, nil
}

func condFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

// avString renders an attribute value as a sortable map key.
func avString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value
	case *types.AttributeValueMemberN:
		return "N:" + v.Value
	case *types.AttributeValueMemberB:
		return fmt.Sprintf("B:%x", v.Value)
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("BOOL:%v", v.Value)
	default:
		return fmt.Sprintf("%#v", av)
	}
}

func avEqual(a, b types.AttributeValue) bool {
	return avString(a) == avString(b)
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// GetItem implements the DynamoDB GetItem call.
func (c *Client) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key, ok := params.Key[t.keyAttr]
	if !ok {
		return nil, fmt.Errorf("dynamofake: key missing attribute %q", t.keyAttr)
	}
	item, ok := t.items[avString(key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

// PutItem implements the DynamoDB PutItem call, honoring an
// attribute_not_exists condition on the key attribute.
func (c *Client) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key, ok := params.Item[t.keyAttr]
	if !ok {
		return nil, fmt.Errorf("dynamofake: item missing key attribute %q", t.keyAttr)
	}
	ks := avString(key)

	if params.ConditionExpression != nil {
		if _, exists := t.items[ks]; exists {
			return nil, condFailed()
		}
	}
	t.items[ks] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// UpdateItem implements the DynamoDB UpdateItem call for SET expressions of
// the form "SET #a = :x, #b = :y", with an attribute_exists condition.
func (c *Client) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key, ok := params.Key[t.keyAttr]
	if !ok {
		return nil, fmt.Errorf("dynamofake: key missing attribute %q", t.keyAttr)
	}
	ks := avString(key)

	item, exists := t.items[ks]
	if params.ConditionExpression != nil && !exists {
		return nil, condFailed()
	}
	if !exists {
		item = map[string]types.AttributeValue{t.keyAttr: key}
		t.items[ks] = item
	}

	expr := aws.ToString(params.UpdateExpression)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("dynamofake: unsupported update expression %q", expr)
	}
	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		parts := strings.SplitN(clause, " = ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("dynamofake: unsupported clause %q", clause)
		}
		name, ok := params.ExpressionAttributeNames[parts[0]]
		if !ok {
			return nil, fmt.Errorf("dynamofake: unresolved name %q", parts[0])
		}
		value, ok := params.ExpressionAttributeValues[parts[1]]
		if !ok {
			return nil, fmt.Errorf("dynamofake: unresolved value %q", parts[1])
		}
		item[name] = value
	}

	out := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = copyItem(item)
	}
	return out, nil
}

// DeleteItem implements the DynamoDB DeleteItem call, honoring an
// attribute_exists condition on the key attribute.
func (c *Client) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	key, ok := params.Key[t.keyAttr]
	if !ok {
		return nil, fmt.Errorf("dynamofake: key missing attribute %q", t.keyAttr)
	}
	ks := avString(key)

	if _, exists := t.items[ks]; !exists {
		if params.ConditionExpression != nil {
			return nil, condFailed()
		}
		return &dynamodb.DeleteItemOutput{}, nil
	}
	delete(t.items, ks)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Scan implements the DynamoDB Scan call with a stable key order, a single
// "#f = :v" equality filter, Limit, and ExclusiveStartKey resumption.
// Unlike real DynamoDB the filter is applied before the limit, and
// LastEvaluatedKey is only set when matching items remain.
func (c *Client) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return nil, c.Fail
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := ""
	if params.ExclusiveStartKey != nil {
		sk, ok := params.ExclusiveStartKey[t.keyAttr]
		if !ok {
			return nil, fmt.Errorf("dynamofake: start key missing attribute %q", t.keyAttr)
		}
		start = avString(sk)
	}

	var filterAttr string
	var filterValue types.AttributeValue
	if params.FilterExpression != nil {
		if aws.ToString(params.FilterExpression) != "#f = :v" {
			return nil, fmt.Errorf("dynamofake: unsupported filter %q", aws.ToString(params.FilterExpression))
		}
		filterAttr = params.ExpressionAttributeNames["#f"]
		filterValue = params.ExpressionAttributeValues[":v"]
	}

	out := &dynamodb.ScanOutput{}
	limit := int32(0)
	if params.Limit != nil {
		limit = *params.Limit
	}
	for _, k := range keys {
		if start != "" && k <= start {
			continue
		}
		item := t.items[k]
		if filterAttr != "" {
			v, ok := item[filterAttr]
			if !ok || !avEqual(v, filterValue) {
				continue
			}
		}
		if limit > 0 && int32(len(out.Items)) == limit {
			last := out.Items[len(out.Items)-1]
			out.LastEvaluatedKey = map[string]types.AttributeValue{t.keyAttr: last[t.keyAttr]}
			return out, nil
		}
		out.Items = append(out.Items, copyItem(item))
	}
	return out, nil
}
