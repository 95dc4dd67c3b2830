package records

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Decimal is an exact decimal amount. It marshals to the store as a number
// in its lexical form, so values like 0.1 survive encode/decode bit-exact.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal parses a decimal from its string form.
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}

// MustDecimal parses a decimal and panics on failure. For tests and constants.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
func (d Decimal) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: d.String()}, nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
func (d *Decimal) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return fmt.Errorf("records: expected number attribute for decimal, got %T", av)
	}
	parsed, err := decimal.NewFromString(n.Value)
	if err != nil {
		return fmt.Errorf("records: parse decimal %q: %w", n.Value, err)
	}
	d.Decimal = parsed
	return nil
}
