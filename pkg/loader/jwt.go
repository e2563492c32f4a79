package loader

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

func jwtParts(input string) []string {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "Bearer "))
	return strings.Split(input, ".")
}

// IsJWT detects if input looks like a JWT token: three non-empty
// base64url parts, the first two of which decode to JSON objects.
func IsJWT(input string) bool {
	parts := jwtParts(input)
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := decodeJWTSegment(parts[i]); err != nil {
			return false
		}
	}
	_, err := base64.RawURLEncoding.DecodeString(parts[2])
	return err == nil
}

// DecodeJWT decodes a token into {header, payload, signature}. The
// signature stays base64url encoded.
func DecodeJWT(input string) (jsonvalue.Value, error) {
	parts := jwtParts(input)
	if len(parts) != 3 {
		return jsonvalue.Value{}, fmt.Errorf("invalid JWT: expected 3 parts, got %d", len(parts))
	}
	header, err := decodeJWTSegment(parts[0])
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("invalid JWT header: %w", err)
	}
	payload, err := decodeJWTSegment(parts[1])
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("invalid JWT payload: %w", err)
	}
	return jsonvalue.ObjectOf(
		jsonvalue.Member{Key: "header", Value: header},
		jsonvalue.Member{Key: "payload", Value: payload},
		jsonvalue.Member{Key: "signature", Value: jsonvalue.String(parts[2])},
	), nil
}

func decodeJWTSegment(part string) (jsonvalue.Value, error) {
	raw, err := base64.RawURLEncoding.DecodeString(part)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := jsonvalue.Parse(raw)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if v.Kind() != jsonvalue.KindObject {
		return jsonvalue.Value{}, fmt.Errorf("expected a JSON object, got %s", v.Kind())
	}
	return v, nil
}
