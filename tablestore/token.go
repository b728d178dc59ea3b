package tablestore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tokenAttr is the wire form of one key attribute inside a continuation
// token. Key attributes are scalar by construction, so the tagged union
// below covers every shape DynamoDB can hand back in a LastEvaluatedKey.
type tokenAttr struct {
	S *string `json:"s,omitempty"`
	N *string `json:"n,omitempty"`
	B []byte  `json:"b,omitempty"`
}

// encodeToken packs a LastEvaluatedKey into an opaque token that survives a
// round trip through logs, URLs and retries. An empty key map encodes to the
// empty token, the exhaustion marker.
func encodeToken(lastKey map[string]types.AttributeValue) (ContinuationToken, error) {
	if len(lastKey) == 0 {
		return "", nil
	}
	wire := make(map[string]tokenAttr, len(lastKey))
	for name, av := range lastKey {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			wire[name] = tokenAttr{S: &v.Value}
		case *types.AttributeValueMemberN:
			wire[name] = tokenAttr{N: &v.Value}
		case *types.AttributeValueMemberB:
			wire[name] = tokenAttr{B: v.Value}
		default:
			return "", fmt.Errorf("unsupported key attribute type %T for %q", av, name)
		}
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return ContinuationToken(base64.StdEncoding.EncodeToString(raw)), nil
}

// decodeToken unpacks a token produced by encodeToken back into an
// ExclusiveStartKey. Tokens arrive from callers, so a malformed one is an
// argument fault rather than a store fault.
func decodeToken(token ContinuationToken) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(string(token))
	if err != nil {
		return nil, &InvalidArgumentError{Label: "token", Reason: "not a valid continuation token"}
	}
	var wire map[string]tokenAttr
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &InvalidArgumentError{Label: "token", Reason: "not a valid continuation token"}
	}
	key := make(map[string]types.AttributeValue, len(wire))
	for name, attr := range wire {
		switch {
		case attr.S != nil:
			key[name] = &types.AttributeValueMemberS{Value: *attr.S}
		case attr.N != nil:
			key[name] = &types.AttributeValueMemberN{Value: *attr.N}
		case attr.B != nil:
			key[name] = &types.AttributeValueMemberB{Value: attr.B}
		default:
			return nil, &InvalidArgumentError{Label: "token", Reason: "not a valid continuation token"}
		}
	}
	return key, nil
}
