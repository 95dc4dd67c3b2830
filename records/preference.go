package records

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// Platform links an external platform account to a user.
type Platform struct {
	PlatformName string `dynamodbav:"platform_name"`
	Username     string `dynamodbav:"username"`
}

// ActionPref configures one action the user has opted into. CoinName and
// CoinPrice are optional; CoinPrice is an exact decimal amount.
type ActionPref struct {
	ActionTypeID int64    `dynamodbav:"action_type_id"`
	CoinName     *string  `dynamodbav:"coin_name,omitempty"`
	CoinPrice    *Decimal `dynamodbav:"coin_price,omitempty"`
}

// Preference holds a user's platform links and action settings. There is at
// most one preference record per user; the user must exist when it is written.
type Preference struct {
	UserID    string       `dynamodbav:"user_id"`
	Platforms []Platform   `dynamodbav:"platforms"`
	Actions   []ActionPref `dynamodbav:"actions"`
}

func (p Preference) Collection() string { return CollectionPreferences }

func (p Preference) Key() types.AttributeValue {
	return &types.AttributeValueMemberS{Value: p.UserID}
}

// Encode converts the preference to its attribute representation.
func (p Preference) Encode() (store.Item, error) {
	return encode(p)
}

// DecodePreference converts stored attributes back into a Preference.
func DecodePreference(item store.Item) (*Preference, error) {
	var p Preference
	if err := decodeInto(item, "user_id", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
