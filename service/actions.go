package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

// CreateAction records a new action. The referenced user must exist, and
// the action id must be globally unique: creation fails with
// store.ErrAlreadyExists instead of overwriting.
func (s *Service) CreateAction(ctx context.Context, a records.Action) (*records.Action, error) {
	item, err := a.Encode()
	if err != nil {
		return nil, err
	}
	if err := s.store.EnsureReference(ctx, records.CollectionActions, item); err != nil {
		return nil, err
	}
	created, err := s.store.CreateUnique(ctx, records.CollectionActions, item)
	if err != nil {
		return nil, err
	}
	return s.decodeAction(created)
}

// GetAction retrieves an action by id.
func (s *Service) GetAction(ctx context.Context, actionID int64) (*records.Action, error) {
	item, err := s.store.Get(ctx, records.CollectionActions, store.N(actionID))
	if err != nil {
		return nil, err
	}
	return s.decodeAction(item)
}

// ListActions scans the action collection. Filtering by user id pairs with
// the reference edge, e.g. opts.Filter = &store.Filter{Attr: "user_id", ...}.
func (s *Service) ListActions(ctx context.Context, opts store.ScanOptions) ([]records.Action, string, error) {
	items, next, err := s.store.Scan(ctx, records.CollectionActions, opts)
	if err != nil {
		return nil, "", err
	}
	actions := make([]records.Action, 0, len(items))
	for _, item := range items {
		a, err := s.decodeAction(item)
		if err != nil {
			return nil, "", err
		}
		actions = append(actions, *a)
	}
	return actions, next, nil
}

// ActionPatch is a partial action update; nil fields are left untouched.
// The owning user cannot be reassigned.
type ActionPatch struct {
	ActionTypeID     *int64
	VaultID          *string
	TransactionIndex *int64
	TransactionType  *string
	Payload          *map[string]any
}

// UpdateAction applies a partial update to an action. The action's user
// must still exist at the time of the write.
func (s *Service) UpdateAction(ctx context.Context, actionID int64, patch ActionPatch) (*records.Action, error) {
	current, err := s.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.EnsureExists(ctx, records.CollectionUsers, store.S(current.UserID)); err != nil {
		return nil, err
	}

	deltas := store.Item{}
	if patch.ActionTypeID != nil {
		deltas["action_type_id"] = store.N(*patch.ActionTypeID)
	}
	if patch.VaultID != nil {
		deltas["vault_id"] = &types.AttributeValueMemberS{Value: *patch.VaultID}
	}
	if patch.TransactionIndex != nil {
		deltas["transaction_index"] = store.N(*patch.TransactionIndex)
	}
	if patch.TransactionType != nil {
		deltas["transaction_type"] = &types.AttributeValueMemberS{Value: *patch.TransactionType}
	}
	if patch.Payload != nil {
		av, err := marshalAttr(*patch.Payload)
		if err != nil {
			return nil, err
		}
		deltas["payload"] = av
	}

	updated, err := s.store.Update(ctx, records.CollectionActions, store.N(actionID), deltas)
	if err != nil {
		return nil, err
	}
	return s.decodeAction(updated)
}

// DeleteAction removes an action by id.
func (s *Service) DeleteAction(ctx context.Context, actionID int64) error {
	return s.store.Delete(ctx, records.CollectionActions, store.N(actionID))
}

func (s *Service) decodeAction(item store.Item) (*records.Action, error) {
	a, err := records.DecodeAction(item)
	if err != nil {
		s.logger.Error("corrupt action record", "error", err)
		return nil, err
	}
	return a, nil
}
