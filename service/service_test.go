package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crct-xyz/api/internal/dynamofake"
	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	reg := records.Collections()
	client := dynamofake.New()
	for _, name := range reg.Collections() {
		sch, ok := reg.Lookup(name)
		require.True(t, ok)
		client.AddTable(name, sch.KeyAttr)
	}

	svc := New(store.New(client, store.DefaultConfig(), reg), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, records.User{Wallet: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", created.Wallet)
	assert.NotEmpty(t, created.CreatedAt)
	assert.NotEmpty(t, created.UpdatedAt)

	got, err := svc.GetUser(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, created.Wallet, got.Wallet)

	_, err = svc.CreateUser(ctx, records.User{Wallet: "abc"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateUser_RequiresWallet(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateUser(context.Background(), records.User{})
	assert.Error(t, err)
}

func TestRegisterUser_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.RegisterUser(ctx, "abc", strPtr("@someone"))
	require.NoError(t, err)
	assert.True(t, first.IsRegistered)
	require.NotNil(t, first.TelegramUsername)
	assert.Equal(t, "@someone", *first.TelegramUsername)

	second, err := svc.RegisterUser(ctx, "abc", nil)
	require.NoError(t, err)
	assert.True(t, second.IsRegistered)
	require.NotNil(t, second.TelegramUsername)
	assert.Equal(t, "@someone", *second.TelegramUsername)
}

func TestUpdateUser_PartialPatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, records.User{Wallet: "abc", TelegramUsername: strPtr("@keep")})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, "abc", UserPatch{IsRegistered: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsRegistered)
	require.NotNil(t, updated.TelegramUsername)
	assert.Equal(t, "@keep", *updated.TelegramUsername)
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateUser(context.Background(), "missing", UserPatch{IsRegistered: boolPtr(true)})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserPreferenceFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, records.User{Wallet: "abc"})
	require.NoError(t, err)

	pref := records.Preference{
		UserID:    "abc",
		Platforms: []records.Platform{{PlatformName: "telegram", Username: "@someone"}},
		Actions:   []records.ActionPref{{ActionTypeID: 1}},
	}
	_, err = svc.PutPreference(ctx, pref)
	require.NoError(t, err)

	got, err := svc.GetPreference(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, pref.Platforms, got.Platforms)

	// Once the user is gone, the same write is rejected and names the
	// missing key.
	require.NoError(t, svc.DeleteUser(ctx, "abc"))

	_, err = svc.PutPreference(ctx, pref)
	require.ErrorIs(t, err, store.ErrReferenceNotFound)

	var refErr *store.MissingReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "abc", refErr.Key)
}

func TestUpdatePreference_UserMustExist(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, records.User{Wallet: "abc"})
	require.NoError(t, err)
	_, err = svc.PutPreference(ctx, records.Preference{UserID: "abc"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, "abc"))

	platforms := []records.Platform{{PlatformName: "x", Username: "u"}}
	_, err = svc.UpdatePreference(ctx, "abc", PreferencePatch{Platforms: &platforms})
	assert.ErrorIs(t, err, store.ErrReferenceNotFound)
}

func TestCreateAction(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	action := records.Action{
		ActionID:     42,
		ActionTypeID: 1,
		UserID:       "abc",
		Payload:      map[string]any{"note": "hello"},
	}

	_, err := svc.CreateAction(ctx, action)
	assert.ErrorIs(t, err, store.ErrReferenceNotFound)

	_, err = svc.CreateUser(ctx, records.User{Wallet: "abc"})
	require.NoError(t, err)

	created, err := svc.CreateAction(ctx, action)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ActionID)

	_, err = svc.CreateAction(ctx, action)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUpdateAction_PartialPatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, records.User{Wallet: "abc"})
	require.NoError(t, err)
	_, err = svc.CreateAction(ctx, records.Action{
		ActionID:     42,
		ActionTypeID: 1,
		UserID:       "abc",
		Payload:      map[string]any{"note": "hello"},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateAction(ctx, 42, ActionPatch{VaultID: strPtr("vault-1")})
	require.NoError(t, err)
	require.NotNil(t, updated.VaultID)
	assert.Equal(t, "vault-1", *updated.VaultID)
	assert.Equal(t, int64(1), updated.ActionTypeID)
	assert.Equal(t, map[string]any{"note": "hello"}, updated.Payload)
}

func TestCreateOrder_Defaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, records.User{Wallet: "abc"})
	require.NoError(t, err)

	created, err := svc.CreateOrder(ctx, records.Order{
		App:         "vault",
		ActionEvent: records.ActionEvent{EventType: "deposit"},
		UserID:      "abc",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.OrderID)
	assert.Equal(t, int64(1700000000), created.Timestamp)

	got, err := svc.GetOrder(ctx, created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "vault", got.App)
}

func TestUpdateOrder_UserMustExist(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, records.User{Wallet: "abc"})
	require.NoError(t, err)
	created, err := svc.CreateOrder(ctx, records.Order{
		OrderID: "ord-1",
		App:     "vault",
		UserID:  "abc",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, "abc"))

	_, err = svc.UpdateOrder(ctx, created.OrderID, OrderPatch{App: strPtr("other")})
	assert.ErrorIs(t, err, store.ErrReferenceNotFound)
}

func TestActionTypes_CRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateActionType(ctx, records.ActionType{
		TypeID:      1,
		TypeName:    "swap",
		Description: "token swap",
	})
	require.NoError(t, err)
	assert.Equal(t, "swap", created.TypeName)

	_, err = svc.CreateActionType(ctx, records.ActionType{TypeID: 1, TypeName: "dup"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	updated, err := svc.UpdateActionType(ctx, 1, ActionTypePatch{Description: strPtr("updated")})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, "swap", updated.TypeName)

	require.NoError(t, svc.DeleteActionType(ctx, 1))
	_, err = svc.GetActionType(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTelegramSessions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.PutTelegramSession(ctx, records.TelegramSession{TelegramUser: "tg-1", SessionID: 1})
	require.NoError(t, err)

	// A second write replaces the previous session.
	_, err = svc.PutTelegramSession(ctx, records.TelegramSession{TelegramUser: "tg-1", SessionID: 2})
	require.NoError(t, err)

	got, err := svc.GetTelegramSession(ctx, "tg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.SessionID)

	require.NoError(t, svc.DeleteTelegramSession(ctx, "tg-1"))
	_, err = svc.GetTelegramSession(ctx, "tg-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListActions_FilterByUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, wallet := range []string{"abc", "xyz"} {
		_, err := svc.CreateUser(ctx, records.User{Wallet: wallet})
		require.NoError(t, err)
	}
	for i := int64(1); i <= 4; i++ {
		user := "abc"
		if i%2 == 0 {
			user = "xyz"
		}
		_, err := svc.CreateAction(ctx, records.Action{ActionID: i, ActionTypeID: 1, UserID: user})
		require.NoError(t, err)
	}

	actions, next, err := svc.ListActions(ctx, store.ScanOptions{
		Filter: &store.Filter{Attr: "user_id", Value: store.S("abc")},
	})
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, actions, 2)
	for _, a := range actions {
		assert.Equal(t, "abc", a.UserID)
	}
}
