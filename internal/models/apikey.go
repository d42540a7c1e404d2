package models

import (
	"encoding/json"
	"strings"
	"time"
)

// KeyStatus is the lifecycle state of an API key.
type KeyStatus int

const (
	// KeyActive keys can be used and revoked.
	KeyActive KeyStatus = iota
	// KeyInactive keys are revoked. The state is terminal.
	KeyInactive
)

// String returns the wire value of the status.
func (s KeyStatus) String() string {
	switch s {
	case KeyActive:
		return "active"
	case KeyInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// ParseKeyStatus maps a wire value to a KeyStatus. Anything other than
// "active" is treated as inactive.
func ParseKeyStatus(s string) KeyStatus {
	if strings.EqualFold(strings.TrimSpace(s), "active") {
		return KeyActive
	}
	return KeyInactive
}

// APIKey is a marketplace API key as known to the client.
type APIKey struct {
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ID         string
	Secret     string
	ModelID    string
	Status     KeyStatus
}

// IsActive reports whether the key is Active.
func (k APIKey) IsActive() bool {
	return k.Status == KeyActive
}

// Masked returns the secret with only the first 8 and last 4 characters
// visible.
func (k APIKey) Masked() string {
	return MaskSecret(k.Secret)
}

// MaskSecret renders a secret as first8...last4. Secrets too short to mask
// that way are hidden entirely. Lengths count runes, not bytes.
func MaskSecret(secret string) string {
	r := []rune(secret)
	if len(r) < 12 {
		return "****"
	}
	return string(r[:8]) + "..." + string(r[len(r)-4:])
}

type apiKeyJSON struct {
	MongoID  string `json:"_id"`
	ID       string `json:"id"`
	Key      string `json:"key"`
	Status   string `json:"status"`
	Created  string `json:"created"`
	Created2 string `json:"createdAt"`
	LastUsed string `json:"lastUsed"`
	ModelID  string `json:"modelId"`
}

// UnmarshalJSON decodes the server representation of a key.
func (k *APIKey) UnmarshalJSON(data []byte) error {
	var raw apiKeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	k.ID = firstNonEmpty(raw.MongoID, raw.ID)
	k.Secret = raw.Key
	k.ModelID = raw.ModelID
	k.Status = KeyActive
	if raw.Status != "" {
		k.Status = ParseKeyStatus(raw.Status)
	}
	k.CreatedAt, _ = ParseTime(firstNonEmpty(raw.Created, raw.Created2))
	k.LastUsedAt = nil
	if t, ok := ParseTime(raw.LastUsed); ok {
		k.LastUsedAt = &t
	}
	return nil
}

// MarshalJSON encodes the key in the server representation.
func (k APIKey) MarshalJSON() ([]byte, error) {
	raw := apiKeyJSON{
		MongoID: k.ID,
		Key:     k.Secret,
		Status:  k.Status.String(),
		ModelID: k.ModelID,
	}
	if !k.CreatedAt.IsZero() {
		raw.Created = k.CreatedAt.Format(time.RFC3339)
	}
	if k.LastUsedAt != nil {
		raw.LastUsed = k.LastUsedAt.Format(time.RFC3339)
	}
	return json.Marshal(raw)
}

// ModelSelection optionally scopes a new key to one model.
type ModelSelection struct {
	ModelID string `json:"modelId,omitempty"`
}

// IsZero reports whether no model was selected.
func (s ModelSelection) IsZero() bool {
	return strings.TrimSpace(s.ModelID) == ""
}
