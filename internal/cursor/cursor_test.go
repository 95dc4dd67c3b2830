package cursor

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  map[string]types.AttributeValue
	}{
		{
			name: "string key",
			key: map[string]types.AttributeValue{
				"wallet": &types.AttributeValueMemberS{Value: "abc123"},
			},
		},
		{
			name: "number key",
			key: map[string]types.AttributeValue{
				"action_id": &types.AttributeValueMemberN{Value: "42"},
			},
		},
		{
			name: "large number keeps lexical form",
			key: map[string]types.AttributeValue{
				"action_id": &types.AttributeValueMemberN{Value: "12345678901234567890"},
			},
		},
		{
			name: "binary key",
			key: map[string]types.AttributeValue{
				"blob": &types.AttributeValueMemberB{Value: []byte{0x01, 0x02, 0xff}},
			},
		},
		{
			name: "composite key",
			key: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: "partition"},
				"sk": &types.AttributeValueMemberN{Value: "7"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Encode(tt.key)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if token == "" {
				t.Fatal("expected non-empty token")
			}

			decoded, err := Decode(token)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(decoded) != len(tt.key) {
				t.Fatalf("expected %d attributes, got %d", len(tt.key), len(decoded))
			}
			for name, want := range tt.key {
				got, ok := decoded[name]
				if !ok {
					t.Fatalf("missing attribute %q", name)
				}
				switch w := want.(type) {
				case *types.AttributeValueMemberS:
					g, ok := got.(*types.AttributeValueMemberS)
					if !ok || g.Value != w.Value {
						t.Errorf("attribute %q: expected S %q, got %#v", name, w.Value, got)
					}
				case *types.AttributeValueMemberN:
					g, ok := got.(*types.AttributeValueMemberN)
					if !ok || g.Value != w.Value {
						t.Errorf("attribute %q: expected N %q, got %#v", name, w.Value, got)
					}
				case *types.AttributeValueMemberB:
					g, ok := got.(*types.AttributeValueMemberB)
					if !ok || string(g.Value) != string(w.Value) {
						t.Errorf("attribute %q: expected B %v, got %#v", name, w.Value, got)
					}
				}
			}
		})
	}
}

func TestEncode_Empty(t *testing.T) {
	token, err := Encode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token for empty key, got %q", token)
	}
}

func TestEncode_UnsupportedType(t *testing.T) {
	key := map[string]types.AttributeValue{
		"flag": &types.AttributeValueMemberBOOL{Value: true},
	}
	if _, err := Encode(key); err == nil {
		t.Error("expected error for unsupported key attribute type")
	}
}

func TestDecode_Empty(t *testing.T) {
	key, err := Decode("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != nil {
		t.Errorf("expected nil key for empty token, got %v", key)
	}
}

func TestDecode_Invalid(t *testing.T) {
	valid, err := Encode(map[string]types.AttributeValue{
		"wallet": &types.AttributeValueMemberS{Value: "abc"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Flip a character in the payload portion to break the checksum.
	tampered := []byte(valid)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "not!!base64"},
		{"too short", "YWJj"},
		{"tampered payload", string(tampered)},
		{"truncated token", valid[:len(valid)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestDecode_ChecksumGuardsContent(t *testing.T) {
	// A well-formed token from a different key must not decode as another.
	a, _ := Encode(map[string]types.AttributeValue{
		"wallet": &types.AttributeValueMemberS{Value: "abc"},
	})
	b, _ := Encode(map[string]types.AttributeValue{
		"wallet": &types.AttributeValueMemberS{Value: "abd"},
	})
	if a == b {
		t.Fatal("expected distinct tokens for distinct keys")
	}
}
