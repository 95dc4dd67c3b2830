package service

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/crct-xyz/api/records"
	"github.com/crct-xyz/api/store"
)

// CreateOrder records a new order for a user. An empty order id is filled
// with a generated one, a zero timestamp defaults to the creation time, and
// the referenced user must exist.
func (s *Service) CreateOrder(ctx context.Context, o records.Order) (*records.Order, error) {
	if o.OrderID == "" {
		o.OrderID = uuid.NewString()
	}
	if o.Timestamp == 0 {
		o.Timestamp = s.now().Unix()
	}
	item, err := o.Encode()
	if err != nil {
		return nil, err
	}
	if err := s.store.EnsureReference(ctx, records.CollectionOrders, item); err != nil {
		return nil, err
	}
	created, err := s.store.CreateUnique(ctx, records.CollectionOrders, item)
	if err != nil {
		return nil, err
	}
	return s.decodeOrder(created)
}

// GetOrder retrieves an order by id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*records.Order, error) {
	item, err := s.store.Get(ctx, records.CollectionOrders, store.S(orderID))
	if err != nil {
		return nil, err
	}
	return s.decodeOrder(item)
}

// ListOrders scans the order collection.
func (s *Service) ListOrders(ctx context.Context, opts store.ScanOptions) ([]records.Order, string, error) {
	items, next, err := s.store.Scan(ctx, records.CollectionOrders, opts)
	if err != nil {
		return nil, "", err
	}
	orders := make([]records.Order, 0, len(items))
	for _, item := range items {
		o, err := s.decodeOrder(item)
		if err != nil {
			return nil, "", err
		}
		orders = append(orders, *o)
	}
	return orders, next, nil
}

// OrderPatch is a partial order update; nil fields are left untouched.
// The owning user cannot be reassigned.
type OrderPatch struct {
	App         *string
	ActionEvent *records.ActionEvent
	Timestamp   *int64
}

// UpdateOrder applies a partial update to an order. The order's user must
// still exist at the time of the write.
func (s *Service) UpdateOrder(ctx context.Context, orderID string, patch OrderPatch) (*records.Order, error) {
	current, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.store.EnsureExists(ctx, records.CollectionUsers, store.S(current.UserID)); err != nil {
		return nil, err
	}

	deltas := store.Item{}
	if patch.App != nil {
		deltas["app"] = &types.AttributeValueMemberS{Value: *patch.App}
	}
	if patch.ActionEvent != nil {
		av, err := marshalAttr(*patch.ActionEvent)
		if err != nil {
			return nil, err
		}
		deltas["action_event"] = av
	}
	if patch.Timestamp != nil {
		deltas["timestamp"] = store.N(*patch.Timestamp)
	}

	updated, err := s.store.Update(ctx, records.CollectionOrders, store.S(orderID), deltas)
	if err != nil {
		return nil, err
	}
	return s.decodeOrder(updated)
}

// DeleteOrder removes an order by id.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	return s.store.Delete(ctx, records.CollectionOrders, store.S(orderID))
}

func (s *Service) decodeOrder(item store.Item) (*records.Order, error) {
	o, err := records.DecodeOrder(item)
	if err != nil {
		s.logger.Error("corrupt order record", "error", err)
		return nil, err
	}
	return o, nil
}
