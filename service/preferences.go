package service

import (
	"context"

	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

// PutPreference writes a user's preference record, replacing any previous
// one. The referenced user must exist at write time.
func (s *Service) PutPreference(ctx context.Context, p records.Preference) (*records.Preference, error) {
	item, err := p.Encode()
	if err != nil {
		return nil, err
	}
	if err := s.store.EnsureReference(ctx, records.CollectionPreferences, item); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, records.CollectionPreferences, item, store.PutOptions{}); err != nil {
		return nil, err
	}
	return s.decodePreference(item)
}

// GetPreference retrieves a user's preference record.
func (s *Service) GetPreference(ctx context.Context, userID string) (*records.Preference, error) {
	item, err := s.store.Get(ctx, records.CollectionPreferences, store.S(userID))
	if err != nil {
		return nil, err
	}
	return s.decodePreference(item)
}

// ListPreferences scans the preference collection.
func (s *Service) ListPreferences(ctx context.Context, opts store.ScanOptions) ([]records.Preference, string, error) {
	items, next, err := s.store.Scan(ctx, records.CollectionPreferences, opts)
	if err != nil {
		return nil, "", err
	}
	prefs := make([]records.Preference, 0, len(items))
	for _, item := range items {
		p, err := s.decodePreference(item)
		if err != nil {
			return nil, "", err
		}
		prefs = append(prefs, *p)
	}
	return prefs, next, nil
}

// PreferencePatch is a partial preference update; nil fields are left
// untouched.
type PreferencePatch struct {
	Platforms *[]records.Platform
	Actions   *[]records.ActionPref
}

// UpdatePreference applies a partial update to a user's preference record.
// The referenced user must still exist.
func (s *Service) UpdatePreference(ctx context.Context, userID string, patch PreferencePatch) (*records.Preference, error) {
	if err := s.store.EnsureExists(ctx, records.CollectionUsers, store.S(userID)); err != nil {
		return nil, err
	}

	deltas := store.Item{}
	if patch.Platforms != nil {
		av, err := marshalAttr(*patch.Platforms)
		if err != nil {
			return nil, err
		}
		deltas["platforms"] = av
	}
	if patch.Actions != nil {
		av, err := marshalAttr(*patch.Actions)
		if err != nil {
			return nil, err
		}
		deltas["actions"] = av
	}

	updated, err := s.store.Update(ctx, records.CollectionPreferences, store.S(userID), deltas)
	if err != nil {
		return nil, err
	}
	return s.decodePreference(updated)
}

// DeletePreference removes a user's preference record.
func (s *Service) DeletePreference(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, records.CollectionPreferences, store.S(userID))
}

func (s *Service) decodePreference(item store.Item) (*records.Preference, error) {
	p, err := records.DecodePreference(item)
	if err != nil {
		s.logger.Error("corrupt preference record", "error", err)
		return nil, err
	}
	return p, nil
}
