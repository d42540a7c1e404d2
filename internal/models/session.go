package models

import (
	"encoding/json"
	"time"
)

// Identity is the lightweight user snapshot stored alongside the token.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"user_type,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" for the identifier.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Type    string `json:"user_type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.ID = firstNonEmpty(raw.ID, raw.MongoID)
	i.Name = raw.Name
	i.Email = raw.Email
	i.Type = raw.Type
	return nil
}

// DisplayName returns the name, falling back to the email.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.Email != "" {
		return i.Email
	}
	return "Guest"
}

// Session is an authenticated session. A nil *Session means unauthenticated.
type Session struct {
	Token string
	User  Identity
}

// AuthResponse is the body returned by login and register.
type AuthResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp formats the marketplace API emits.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
