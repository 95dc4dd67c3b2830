// Package stream provides DynamoDB Streams handlers that clean up
// dependent records after a referenced user is removed.
//
// The core's check-then-act reference probe leaves a window in which a
// user can be deleted between the probe and a dependent write. This
// handler closes the loop asynchronously: attach it to the user table's
// stream and it deletes preferences, actions, and orders left behind by
// a removed user. Every step is idempotent, so redelivered events are
// harmless.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

// Handler processes user-table stream events.
type Handler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s *store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleUserRemoved processes stream events from the user table and removes
// records that referenced deleted users. Designed to run as an AWS Lambda
// handler.
func (h *Handler) HandleUserRemoved(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord handles a single stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	wallet := getStringAttr(record.Change.Keys, "wallet")
	if wallet == "" {
		return nil
	}

	h.logger.Info("cleaning up after removed user", "wallet", wallet)

	for _, dep := range h.store.Registry().Dependents(records.CollectionUsers) {
		removed, err := h.removeDependents(ctx, dep, wallet)
		if err != nil {
			return fmt.Errorf("clean %s: %w", dep.Collection, err)
		}
		if removed > 0 {
			h.logger.Info("removed dependent records",
				"collection", dep.Collection,
				"wallet", wallet,
				"count", removed,
			)
		}
	}
	return nil
}

// removeDependents deletes all records in a dependent collection whose
// reference attribute matches the removed user's wallet.
func (h *Handler) removeDependents(ctx context.Context, dep store.Schema, wallet string) (int, error) {
	// The reference attribute doubles as the key for collections keyed by
	// user (preferences), so a single conditional delete suffices there.
	if dep.Ref.Attr == dep.KeyAttr {
		err := h.store.Delete(ctx, dep.Collection, store.S(wallet))
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	removed := 0
	cursor := ""
	for {
		items, next, err := h.store.Scan(ctx, dep.Collection, store.ScanOptions{
			Filter: &store.Filter{Attr: dep.Ref.Attr, Value: store.S(wallet)},
			Cursor: cursor,
		})
		if err != nil {
			return removed, err
		}
		for _, item := range items {
			key, ok := item[dep.KeyAttr]
			if !ok {
				continue
			}
			err := h.store.Delete(ctx, dep.Collection, key)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				h.logger.Warn("failed to delete dependent record",
					"collection", dep.Collection,
					"error", err,
				)
				continue // idempotent, will retry on redelivery
			}
			removed++
		}
		if next == "" {
			return removed, nil
		}
		cursor = next
	}
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}
