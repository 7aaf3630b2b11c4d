package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// OAuthState is the opaque blob round-tripped through the Shopify authorize
// redirect. It binds the pending flow to the initiating principal so a callback
// forged for another account is rejected.
type OAuthState struct {
	Nonce     string `json:"nonce"`
	AccountID string `json:"account_id"`
	Shop      string `json:"shop"`
}

// Encode serializes the state as base64 JSON for the state query parameter.
func (s OAuthState) Encode() string {
	raw, _ := json.Marshal(s)
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeOAuthState parses a state parameter produced by Encode.
func DecodeOAuthState(encoded string) (*OAuthState, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	var s OAuthState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	return &s, nil
}
