package records

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// ActionEvent is the event nested inside an order.
type ActionEvent struct {
	EventType string         `dynamodbav:"event_type"`
	Details   map[string]any `dynamodbav:"details"`
}

// Order is an app-originated order tied to a user. Timestamp is a unix
// time; it defaults to the creation time when the caller leaves it zero.
type Order struct {
	OrderID     string      `dynamodbav:"order_id"`
	App         string      `dynamodbav:"app"`
	ActionEvent ActionEvent `dynamodbav:"action_event"`
	UserID      string      `dynamodbav:"user_id"`
	Timestamp   int64       `dynamodbav:"timestamp"`
}

func (o Order) Collection() string { return CollectionOrders }

func (o Order) Key() types.AttributeValue {
	return &types.AttributeValueMemberS{Value: o.OrderID}
}

// Encode converts the order to its attribute representation.
func (o Order) Encode() (store.Item, error) {
	return encode(o)
}

// DecodeOrder converts stored attributes back into an Order.
func DecodeOrder(item store.Item) (*Order, error) {
	var o Order
	if err := decodeInto(item, "order_id", &o); err != nil {
		return nil, err
	}
	return &o, nil
}
