package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EnsureExists verifies that a record exists in the referenced collection.
// It returns a *MissingReferenceError (unwrapping to ErrReferenceNotFound)
// when the key is absent.
//
// The store has no multi-record transactions, so check-then-act is the only
// available strategy: a record deleted between this probe and the dependent
// write leaves a dangling reference. That window is accepted and documented,
// not hidden.
func (s *Store) EnsureExists(ctx context.Context, collection string, key types.AttributeValue) error {
	_, err := s.Get(ctx, collection, key)
	if errors.Is(err, ErrNotFound) {
		return &MissingReferenceError{Collection: collection, Key: keyString(key)}
	}
	return err
}

// EnsureReference runs the existence probe for a dependent collection's
// registered reference edge. Collections without a reference edge pass
// trivially.
func (s *Store) EnsureReference(ctx context.Context, collection string, item Item) error {
	sch, err := s.schema(collection)
	if err != nil {
		return err
	}
	if sch.Ref == nil {
		return nil
	}
	refKey, ok := item[sch.Ref.Attr]
	if !ok {
		return fmt.Errorf("store: item for %q is missing reference attribute %q", collection, sch.Ref.Attr)
	}
	return s.EnsureExists(ctx, sch.Ref.Collection, refKey)
}

// CreateUnique writes a record conditionally on its natural key being
// absent. Exactly one of any set of concurrent callers succeeds; the rest
// receive ErrAlreadyExists and the first record is left unmodified. The
// returned item carries the managed timestamp attributes.
func (s *Store) CreateUnique(ctx context.Context, collection string, item Item) (Item, error) {
	if err := s.Put(ctx, collection, item, PutOptions{IfNotExists: true}); err != nil {
		return nil, err
	}
	return item, nil
}

// UpsertWithFlagMerge reads the current record (if any), merges the patch
// into it, and writes the result. Boolean attributes merge monotonically: a
// stored true is never regressed by a false in the patch. Non-boolean
// attributes in the patch overwrite. Repeated calls with the same patch
// converge to the same observable state, even though each call performs a
// read and a write.
func (s *Store) UpsertWithFlagMerge(ctx context.Context, collection string, key types.AttributeValue, patch Item) (Item, error) {
	sch, err := s.schema(collection)
	if err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, collection, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	merged := make(Item, len(current)+len(patch)+1)
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		if b, ok := v.(*types.AttributeValueMemberBOOL); ok {
			if cur, ok := merged[k].(*types.AttributeValueMemberBOOL); ok && cur.Value {
				continue // flags only move toward set
			}
			merged[k] = b
			continue
		}
		merged[k] = v
	}
	merged[sch.KeyAttr] = key

	if err := s.Put(ctx, collection, merged, PutOptions{}); err != nil {
		return nil, err
	}
	return merged, nil
}

// keyString renders a key attribute value for error messages.
func keyString(key types.AttributeValue) string {
	switch v := key.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return fmt.Sprintf("%v", key)
	}
}
