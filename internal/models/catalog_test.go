package models

import (
	"encoding/json"
	"testing"
)

func TestCatalog_Kinds(t *testing.T) {
	if EmptyCatalog().Kind() != CatalogEmpty {
		t.Error("EmptyCatalog should be empty")
	}
	if FoundCatalog(nil).Kind() != CatalogEmpty {
		t.Error("FoundCatalog(nil) should collapse to empty")
	}

	c := FoundCatalog([]CatalogModel{{ID: "1", Name: "GPT-4"}})
	if c.Kind() != CatalogFound || c.Len() != 1 {
		t.Errorf("unexpected catalog: kind=%v len=%d", c.Kind(), c.Len())
	}

	models := c.Models()
	models[0].Name = "mutated"
	if c.Models()[0].Name != "GPT-4" {
		t.Error("Models() should return a copy")
	}
}

func TestCatalogModel_UnmarshalJSON(t *testing.T) {
	var m CatalogModel
	input := `{"_id":"1","name":"GPT-4","description":"text","rating":4.8,"lastUsed":"2023-10-30"}`
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m.ID != "1" || m.Name != "GPT-4" || m.Rating != 4.8 {
		t.Errorf("unexpected model: %+v", m)
	}
	if m.LastUsed.IsZero() {
		t.Error("lastUsed not parsed")
	}
}

func TestIdentity(t *testing.T) {
	var id Identity
	if err := json.Unmarshal([]byte(`{"_id":"u1","name":"Ada","email":"ada@example.com"}`), &id); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if id.ID != "u1" {
		t.Errorf("ID = %q, want u1", id.ID)
	}
	if id.DisplayName() != "Ada" {
		t.Errorf("DisplayName() = %q", id.DisplayName())
	}
	if (Identity{Email: "x@y.z"}).DisplayName() != "x@y.z" {
		t.Error("DisplayName should fall back to email")
	}
	if (Identity{}).DisplayName() != "Guest" {
		t.Error("DisplayName should fall back to Guest")
	}
}
