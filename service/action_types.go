package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

// CreateActionType registers a new action type. Type ids are unique;
// creation fails with store.ErrAlreadyExists on conflict.
func (s *Service) CreateActionType(ctx context.Context, t records.ActionType) (*records.ActionType, error) {
	item, err := t.Encode()
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateUnique(ctx, records.CollectionActionTypes, item)
	if err != nil {
		return nil, err
	}
	return s.decodeActionType(created)
}

// GetActionType retrieves an action type by id.
func (s *Service) GetActionType(ctx context.Context, typeID int64) (*records.ActionType, error) {
	item, err := s.store.Get(ctx, records.CollectionActionTypes, store.N(typeID))
	if err != nil {
		return nil, err
	}
	return s.decodeActionType(item)
}

// ListActionTypes scans the action type collection.
func (s *Service) ListActionTypes(ctx context.Context, opts store.ScanOptions) ([]records.ActionType, string, error) {
	items, next, err := s.store.Scan(ctx, records.CollectionActionTypes, opts)
	if err != nil {
		return nil, "", err
	}
	out := make([]records.ActionType, 0, len(items))
	for _, item := range items {
		t, err := s.decodeActionType(item)
		if err != nil {
			return nil, "", err
		}
		out = append(out, *t)
	}
	return out, next, nil
}

// ActionTypePatch is a partial action type update; nil fields are left
// untouched.
type ActionTypePatch struct {
	Description *string
	TypeName    *string
	Config      *string
}

// UpdateActionType applies a partial update to an action type.
func (s *Service) UpdateActionType(ctx context.Context, typeID int64, patch ActionTypePatch) (*records.ActionType, error) {
	deltas := store.Item{}
	if patch.Description != nil {
		deltas["description"] = &types.AttributeValueMemberS{Value: *patch.Description}
	}
	if patch.TypeName != nil {
		deltas["type_name"] = &types.AttributeValueMemberS{Value: *patch.TypeName}
	}
	if patch.Config != nil {
		deltas["config"] = &types.AttributeValueMemberS{Value: *patch.Config}
	}
	updated, err := s.store.Update(ctx, records.CollectionActionTypes, store.N(typeID), deltas)
	if err != nil {
		return nil, err
	}
	return s.decodeActionType(updated)
}

// DeleteActionType removes an action type by id.
func (s *Service) DeleteActionType(ctx context.Context, typeID int64) error {
	return s.store.Delete(ctx, records.CollectionActionTypes, store.N(typeID))
}

func (s *Service) decodeActionType(item store.Item) (*records.ActionType, error) {
	t, err := records.DecodeActionType(item)
	if err != nil {
		s.logger.Error("corrupt action type record", "error", err)
		return nil, err
	}
	return t, nil
}
