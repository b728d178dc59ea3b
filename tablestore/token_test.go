package tablestore

import (
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestTokenRoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"pk":   &types.AttributeValueMemberS{Value: "tenant"},
		"rk":   &types.AttributeValueMemberN{Value: "42"},
		"blob": &types.AttributeValueMemberB{Value: []byte{0x01, 0x02}},
	}

	token, err := encodeToken(key)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if token == "" {
		t.Fatal("want non-empty token")
	}

	decoded, err := decodeToken(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(key, decoded) {
		t.Errorf("round trip mismatch: want %v, got %v", key, decoded)
	}
}

func TestTokenEncode_EmptyKeyMeansExhausted(t *testing.T) {
	token, err := encodeToken(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if token != "" {
		t.Errorf("want empty token, got %q", token)
	}

	token, err = encodeToken(map[string]types.AttributeValue{})
	if err != nil || token != "" {
		t.Errorf("want empty token and nil error, got %q, %v", token, err)
	}
}

func TestTokenEncode_IsDeterministic(t *testing.T) {
	key := map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: "tenant"},
		"rk": &types.AttributeValueMemberS{Value: "ada"},
	}

	first, err := encodeToken(key)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, _ := encodeToken(key)
	if first != second {
		t.Errorf("want stable encoding, got %q then %q", first, second)
	}
}

func TestTokenEncode_RejectsNonScalarKey(t *testing.T) {
	key := map[string]types.AttributeValue{
		"flag": &types.AttributeValueMemberBOOL{Value: true},
	}
	if _, err := encodeToken(key); err == nil {
		t.Error("want error for non-scalar key attribute")
	}
}

func TestTokenDecode_EmptyToken(t *testing.T) {
	key, err := decodeToken("")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if key != nil {
		t.Errorf("want nil start key, got %v", key)
	}
}

func TestTokenDecode_RejectsGarbage(t *testing.T) {
	cases := []ContinuationToken{
		"!!not-base64!!",
		"bm90LWpzb24=", // "not-json"
		"eyJwayI6e319", // {"pk":{}} has no recognizable member
	}
	for _, token := range cases {
		if _, err := decodeToken(token); !IsInvalidArgument(err) {
			t.Errorf("decode(%q): want InvalidArgumentError, got %v", token, err)
		}
	}
}
