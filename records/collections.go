package records

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// Collection names. Each maps to one physical table via store.Config.
const (
	CollectionUsers            = "users"
	CollectionPreferences      = "preferences"
	CollectionActions          = "actions"
	CollectionActionTypes      = "action_types"
	CollectionOrders           = "orders"
	CollectionTelegramSessions = "telegram_sessions"
)

// Record is implemented by all typed records.
type Record interface {
	// Collection returns the record's collection name.
	Collection() string

	// Key returns the record's natural key attribute value.
	Key() types.AttributeValue
}

// Collections returns the schema registry for all record collections,
// including the reference edges the store enforces on dependent writes.
func Collections() *store.Registry {
	r := store.NewRegistry()
	r.Register(store.Schema{
		Collection: CollectionUsers,
		KeyAttr:    "wallet",
		Attrs:      []string{"telegram_username", "is_registered", "created_at", "updated_at"},
	})
	r.Register(store.Schema{
		Collection: CollectionPreferences,
		KeyAttr:    "user_id",
		Attrs:      []string{"platforms", "actions", "created_at", "updated_at"},
		Ref:        &store.Reference{Collection: CollectionUsers, Attr: "user_id"},
	})
	r.Register(store.Schema{
		Collection: CollectionActions,
		KeyAttr:    "action_id",
		Attrs: []string{
			"action_type_id", "user_id", "vault_id",
			"transaction_index", "transaction_type", "payload",
			"created_at", "updated_at",
		},
		Ref: &store.Reference{Collection: CollectionUsers, Attr: "user_id"},
	})
	r.Register(store.Schema{
		Collection: CollectionActionTypes,
		KeyAttr:    "type_id",
		Attrs:      []string{"description", "type_name", "config", "created_at", "updated_at"},
	})
	r.Register(store.Schema{
		Collection: CollectionOrders,
		KeyAttr:    "order_id",
		Attrs:      []string{"app", "action_event", "user_id", "timestamp", "created_at", "updated_at"},
		Ref:        &store.Reference{Collection: CollectionUsers, Attr: "user_id"},
	})
	r.Register(store.Schema{
		Collection: CollectionTelegramSessions,
		KeyAttr:    "telegram_user",
		Attrs:      []string{"session_id", "created_at", "updated_at"},
	})
	return r
}

// encode marshals a typed record into its attribute representation.
func encode(r any) (store.Item, error) {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrDecode, err)
	}
	return item, nil
}

// decodeInto unmarshals stored attributes into a typed record, requiring
// the named key attribute to be present.
func decodeInto(item store.Item, keyAttr string, out any) error {
	if _, ok := item[keyAttr]; !ok {
		return fmt.Errorf("%w: missing key attribute %q", store.ErrDecode, keyAttr)
	}
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("%w: %v", store.ErrDecode, err)
	}
	return nil
}
