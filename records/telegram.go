package records

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// TelegramSession maps a telegram user to its current session.
type TelegramSession struct {
	TelegramUser string `dynamodbav:"telegram_user"`
	SessionID    int64  `dynamodbav:"session_id"`
}

func (t TelegramSession) Collection() string { return CollectionTelegramSessions }

func (t TelegramSession) Key() types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.TelegramUser}
}

// Encode converts the session to its attribute representation.
func (t TelegramSession) Encode() (store.Item, error) {
	return encode(t)
}

// DecodeTelegramSession converts stored attributes back into a TelegramSession.
func DecodeTelegramSession(item store.Item) (*TelegramSession, error) {
	var t TelegramSession
	if err := decodeInto(item, "telegram_user", &t); err != nil {
		return nil, err
	}
	return &t, nil
}
