package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

// CreateUser creates a user keyed by wallet public key. Returns
// store.ErrAlreadyExists if the wallet is already registered.
func (s *Service) CreateUser(ctx context.Context, u records.User) (*records.User, error) {
	if u.Wallet == "" {
		return nil, fmt.Errorf("service: wallet is required")
	}
	item, err := u.Encode()
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateUnique(ctx, records.CollectionUsers, item)
	if err != nil {
		return nil, err
	}
	return s.decodeUser(created)
}

// RegisterUser marks a wallet as registered, creating the user record if it
// does not exist yet. Safe to call repeatedly: the registration flag only
// moves toward set, and later calls never regress it.
func (s *Service) RegisterUser(ctx context.Context, wallet string, telegramUsername *string) (*records.User, error) {
	if wallet == "" {
		return nil, fmt.Errorf("service: wallet is required")
	}
	patch := store.Item{
		"is_registered": &types.AttributeValueMemberBOOL{Value: true},
	}
	if telegramUsername != nil {
		patch["telegram_username"] = &types.AttributeValueMemberS{Value: *telegramUsername}
	}
	merged, err := s.store.UpsertWithFlagMerge(ctx, records.CollectionUsers, store.S(wallet), patch)
	if err != nil {
		return nil, err
	}
	return s.decodeUser(merged)
}

// GetUser retrieves a user by wallet.
func (s *Service) GetUser(ctx context.Context, wallet string) (*records.User, error) {
	item, err := s.store.Get(ctx, records.CollectionUsers, store.S(wallet))
	if err != nil {
		return nil, err
	}
	return s.decodeUser(item)
}

// ListUsers scans the user collection with optional filter, limit and cursor.
func (s *Service) ListUsers(ctx context.Context, opts store.ScanOptions) ([]records.User, string, error) {
	items, next, err := s.store.Scan(ctx, records.CollectionUsers, opts)
	if err != nil {
		return nil, "", err
	}
	users := make([]records.User, 0, len(items))
	for _, item := range items {
		u, err := s.decodeUser(item)
		if err != nil {
			return nil, "", err
		}
		users = append(users, *u)
	}
	return users, next, nil
}

// UserPatch is a partial user update; nil fields are left untouched.
type UserPatch struct {
	TelegramUsername *string
	IsRegistered     *bool
}

// UpdateUser applies a partial update to a user. Returns store.ErrNotFound
// if the wallet is unknown.
func (s *Service) UpdateUser(ctx context.Context, wallet string, patch UserPatch) (*records.User, error) {
	deltas := store.Item{}
	if patch.TelegramUsername != nil {
		deltas["telegram_username"] = &types.AttributeValueMemberS{Value: *patch.TelegramUsername}
	}
	if patch.IsRegistered != nil {
		deltas["is_registered"] = &types.AttributeValueMemberBOOL{Value: *patch.IsRegistered}
	}
	updated, err := s.store.Update(ctx, records.CollectionUsers, store.S(wallet), deltas)
	if err != nil {
		return nil, err
	}
	return s.decodeUser(updated)
}

// DeleteUser removes a user by wallet. Dependent records are not removed
// synchronously; see the stream package for asynchronous cleanup.
func (s *Service) DeleteUser(ctx context.Context, wallet string) error {
	return s.store.Delete(ctx, records.CollectionUsers, store.S(wallet))
}

func (s *Service) decodeUser(item store.Item) (*records.User, error) {
	u, err := records.DecodeUser(item)
	if err != nil {
		s.logger.Error("corrupt user record", "error", err)
		return nil, err
	}
	return u, nil
}
