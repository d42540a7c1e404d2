package models

import (
	"encoding/json"
	"time"
)

// CatalogModel is a marketplace model listing.
type CatalogModel struct {
	LastUsed    time.Time
	ID          string
	Name        string
	Description string
	Category    string
	Rating      float64
}

// UnmarshalJSON accepts "_id" or "id" and a loosely formatted lastUsed.
func (m *CatalogModel) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID     string  `json:"_id"`
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Rating      float64 `json:"rating"`
		LastUsed    string  `json:"lastUsed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = firstNonEmpty(raw.MongoID, raw.ID)
	m.Name = raw.Name
	m.Description = raw.Description
	m.Category = raw.Category
	m.Rating = raw.Rating
	m.LastUsed, _ = ParseTime(raw.LastUsed)
	return nil
}

// CatalogKind tags a Catalog.
type CatalogKind int

const (
	// CatalogEmpty means the server returned no models.
	CatalogEmpty CatalogKind = iota
	// CatalogFound means at least one model was returned.
	CatalogFound
)

// String returns the kind name.
func (k CatalogKind) String() string {
	if k == CatalogFound {
		return "found"
	}
	return "empty"
}

// Catalog is a normalized model listing: either Found with a non-empty list
// or Empty.
type Catalog struct {
	models []CatalogModel
}

// FoundCatalog builds a catalog from a list. An empty list yields Empty.
func FoundCatalog(list []CatalogModel) Catalog {
	if len(list) == 0 {
		return Catalog{}
	}
	out := make([]CatalogModel, len(list))
	copy(out, list)
	return Catalog{models: out}
}

// EmptyCatalog returns the Empty catalog.
func EmptyCatalog() Catalog {
	return Catalog{}
}

// Kind returns Found or Empty.
func (c Catalog) Kind() CatalogKind {
	if len(c.models) == 0 {
		return CatalogEmpty
	}
	return CatalogFound
}

// Models returns a copy of the listed models.
func (c Catalog) Models() []CatalogModel {
	out := make([]CatalogModel, len(c.models))
	copy(out, c.models)
	return out
}

// Len returns the number of models.
func (c Catalog) Len() int {
	return len(c.models)
}
