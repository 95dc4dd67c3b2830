// Package cursor encodes DynamoDB last-evaluated keys as opaque,
// tamper-evident pagination tokens.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrInvalid is returned when a token is malformed, truncated, or fails
// its checksum.
var ErrInvalid = errors.New("cursor: invalid token")

// checksumLen is the number of SHA-256 bytes appended to the payload.
const checksumLen = 8

// field is one key attribute in its wire form. Numbers keep their lexical
// DynamoDB representation so they never pass through a float.
type field struct {
	Name  string `json:"n"`
	Type  string `json:"t"`
	Value string `json:"v"`
}

// Encode converts a last-evaluated key into an opaque token.
// Encoding an empty key returns "".
func Encode(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	fields := make([]field, 0, len(key))
	for name, av := range key {
		f := field{Name: name}
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			f.Type = "S"
			f.Value = v.Value
		case *types.AttributeValueMemberN:
			f.Type = "N"
			f.Value = v.Value
		case *types.AttributeValueMemberB:
			f.Type = "B"
			f.Value = base64.StdEncoding.EncodeToString(v.Value)
		default:
			return "", fmt.Errorf("cursor: unsupported key attribute type %T", av)
		}
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	payload, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	token := append(payload, sum[:checksumLen]...)
	return base64.RawURLEncoding.EncodeToString(token), nil
}

// Decode converts a token back into a last-evaluated key.
// Decoding "" returns a nil key.
func Decode(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(raw) <= checksumLen {
		return nil, fmt.Errorf("%w: token too short", ErrInvalid)
	}

	payload, got := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	sum := sha256.Sum256(payload)
	for i := 0; i < checksumLen; i++ {
		if got[i] != sum[i] {
			return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalid)
		}
	}

	var fields []field
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrInvalid)
	}

	key := make(map[string]types.AttributeValue, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: unnamed key attribute", ErrInvalid)
		}
		switch f.Type {
		case "S":
			key[f.Name] = &types.AttributeValueMemberS{Value: f.Value}
		case "N":
			key[f.Name] = &types.AttributeValueMemberN{Value: f.Value}
		case "B":
			b, err := base64.StdEncoding.DecodeString(f.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
			}
			key[f.Name] = &types.AttributeValueMemberB{Value: b}
		default:
			return nil, fmt.Errorf("%w: unsupported attribute type %q", ErrInvalid, f.Type)
		}
	}
	return key, nil
}
