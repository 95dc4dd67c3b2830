package service

import (
	"context"

	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

// PutTelegramSession writes a telegram session, replacing any previous
// session for the same telegram user.
func (s *Service) PutTelegramSession(ctx context.Context, t records.TelegramSession) (*records.TelegramSession, error) {
	item, err := t.Encode()
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, records.CollectionTelegramSessions, item, store.PutOptions{}); err != nil {
		return nil, err
	}
	return s.decodeTelegramSession(item)
}

// GetTelegramSession retrieves the session for a telegram user.
func (s *Service) GetTelegramSession(ctx context.Context, telegramUser string) (*records.TelegramSession, error) {
	item, err := s.store.Get(ctx, records.CollectionTelegramSessions, store.S(telegramUser))
	if err != nil {
		return nil, err
	}
	return s.decodeTelegramSession(item)
}

// ListTelegramSessions scans the telegram session collection.
func (s *Service) ListTelegramSessions(ctx context.Context, opts store.ScanOptions) ([]records.TelegramSession, string, error) {
	items, next, err := s.store.Scan(ctx, records.CollectionTelegramSessions, opts)
	if err != nil {
		return nil, "", err
	}
	sessions := make([]records.TelegramSession, 0, len(items))
	for _, item := range items {
		t, err := s.decodeTelegramSession(item)
		if err != nil {
			return nil, "", err
		}
		sessions = append(sessions, *t)
	}
	return sessions, next, nil
}

// DeleteTelegramSession removes the session for a telegram user.
func (s *Service) DeleteTelegramSession(ctx context.Context, telegramUser string) error {
	return s.store.Delete(ctx, records.CollectionTelegramSessions, store.S(telegramUser))
}

func (s *Service) decodeTelegramSession(item store.Item) (*records.TelegramSession, error) {
	t, err := records.DecodeTelegramSession(item)
	if err != nil {
		s.logger.Error("corrupt telegram session record", "error", err)
		return nil, err
	}
	return t, nil
}
