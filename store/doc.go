// Package store provides a DynamoDB data access layer with emulated
// referential integrity for schemaless record collections.
//
// The underlying store offers no foreign keys, so dependent records
// (preferences, actions, orders) are guarded by an explicit existence
// probe against the referenced collection before any write is attempted.
// Single-key writes stay atomic via conditional expressions; the probe
// and the write together are not, and the remaining race window is a
// documented limitation rather than something the core papers over.
//
// # Collections
//
// Every collection is described by a [Schema] registered in a [Registry]:
// the key attribute, the known attribute set, and an optional reference
// edge to another collection:
//
//	reg := store.NewRegistry()
//	reg.Register(store.Schema{Collection: "users", KeyAttr: "wallet"})
//	reg.Register(store.Schema{
//	    Collection: "preferences",
//	    KeyAttr:    "user_id",
//	    Ref:        &store.Reference{Collection: "users", Attr: "user_id"},
//	})
//
// # Operations
//
//   - [Store.Get], [Store.Put], [Store.Update], [Store.Delete], [Store.Scan]
//   - [Store.EnsureExists] - read-before-write reference probe
//   - [Store.CreateUnique] - at-most-one record per natural key
//   - [Store.UpsertWithFlagMerge] - converging creation with monotonic flags
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrNotFound] - key absent on read/update/delete
//   - [ErrAlreadyExists] - conditional creation conflict
//   - [ErrReferenceNotFound] - referenced record missing (see [MissingReferenceError])
//   - [ErrInvalidCursor] - malformed or tampered pagination token
//   - [ErrDecode] - stored data does not match the expected shape
//   - [ErrUnavailable] - transient store failure, eligible for caller retry
package store
