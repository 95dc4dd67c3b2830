package records

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// ActionType describes a kind of action users can configure. Config holds
// the serialized action configuration; the core does not interpret it.
type ActionType struct {
	TypeID      int64  `dynamodbav:"type_id"`
	Description string `dynamodbav:"description"`
	TypeName    string `dynamodbav:"type_name"`
	Config      string `dynamodbav:"config"`
}

func (t ActionType) Collection() string { return CollectionActionTypes }

func (t ActionType) Key() types.AttributeValue {
	return store.N(t.TypeID)
}

// Encode converts the action type to its attribute representation.
func (t ActionType) Encode() (store.Item, error) {
	return encode(t)
}

// DecodeActionType converts stored attributes back into an ActionType.
func DecodeActionType(item store.Item) (*ActionType, error) {
	var t ActionType
	if err := decodeInto(item, "type_id", &t); err != nil {
		return nil, err
	}
	return &t, nil
}
