package records

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// User is keyed by wallet public key.
type User struct {
	Wallet           string  `dynamodbav:"wallet"`
	TelegramUsername *string `dynamodbav:"telegram_username,omitempty"`
	IsRegistered     bool    `dynamodbav:"is_registered"`
	CreatedAt        string  `dynamodbav:"created_at,omitempty"`
	UpdatedAt        string  `dynamodbav:"updated_at,omitempty"`
}

func (u User) Collection() string { return CollectionUsers }

func (u User) Key() types.AttributeValue {
	return &types.AttributeValueMemberS{Value: u.Wallet}
}

// Encode converts the user to its attribute representation.
func (u User) Encode() (store.Item, error) {
	return encode(u)
}

// DecodeUser converts stored attributes back into a User.
func DecodeUser(item store.Item) (*User, error) {
	var u User
	if err := decodeInto(item, "wallet", &u); err != nil {
		return nil, err
	}
	return &u, nil
}
