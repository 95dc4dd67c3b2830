package records

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// Action records something a user did or scheduled. The action id is
// globally unique; creation fails rather than overwrite an existing id.
type Action struct {
	ActionID         int64          `dynamodbav:"action_id"`
	ActionTypeID     int64          `dynamodbav:"action_type_id"`
	UserID           string         `dynamodbav:"user_id"`
	VaultID          *string        `dynamodbav:"vault_id,omitempty"`
	TransactionIndex *int64         `dynamodbav:"transaction_index,omitempty"`
	TransactionType  *string        `dynamodbav:"transaction_type,omitempty"`
	Payload          map[string]any `dynamodbav:"payload"`
}

func (a Action) Collection() string { return CollectionActions }

func (a Action) Key() types.AttributeValue {
	return store.N(a.ActionID)
}

// Encode converts the action to its attribute representation.
func (a Action) Encode() (store.Item, error) {
	return encode(a)
}

// DecodeAction converts stored attributes back into an Action.
func DecodeAction(item store.Item) (*Action, error) {
	var a Action
	if err := decodeInto(item, "action_id", &a); err != nil {
		return nil, err
	}
	return &a, nil
}
