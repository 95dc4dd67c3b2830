// Package records defines the typed records stored by the service and
// their codecs to and from the store's untyped attribute representation.
//
// Optional fields are pointers tagged omitempty: absent values are omitted
// from the stored attributes entirely, never written as NULL, and decode
// back to nil. Monetary amounts use [Decimal], which marshals as a DynamoDB
// number string and never passes through binary floating point.
package records
