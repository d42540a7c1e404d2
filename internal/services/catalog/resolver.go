// Package catalog resolves the model list shown on the Models tab and used by
// the key model selector.
package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
)

// PopularLimit is how many popular models are requested as a fallback.
const PopularLimit = 4

// Source is the subset of the gateway the resolver reads from.
type Source interface {
	MyModels(ctx context.Context) (models.Catalog, error)
	Models(ctx context.Context, q gateway.ModelQuery) (models.Catalog, error)
}

// Origin records which listing a catalog came from.
type Origin int

const (
	// OriginDeveloper is the caller's own model history.
	OriginDeveloper Origin = iota
	// OriginPopular is the public popular listing.
	OriginPopular
	// OriginStatic is the built-in list.
	OriginStatic
)

func (o Origin) String() string {
	switch o {
	case OriginDeveloper:
		return "your models"
	case OriginPopular:
		return "popular"
	case OriginStatic:
		return "offline"
	default:
		return "unknown"
	}
}

// Result is a resolved catalog.
type Result struct {
	Err     error
	Catalog models.Catalog
	Source  Origin
}

// StaticModels is shown when neither listing can be fetched.
func StaticModels() []models.CatalogModel {
	return []models.CatalogModel{
		{ID: "gpt-4", Name: "GPT-4", Category: "Text Generation", Description: "Advanced language model for complex reasoning"},
		{ID: "dall-e-3", Name: "DALL-E 3", Category: "Image Generation", Description: "Image generation from natural language prompts"},
		{ID: "stable-diffusion-xl", Name: "Stable Diffusion XL", Category: "Image Generation", Description: "High resolution open image model"},
		{ID: "claude-2", Name: "Claude 2", Category: "Text Generation", Description: "Long context assistant model"},
	}
}

// Resolver resolves and caches the catalog.
type Resolver struct {
	src        Source
	last       models.Catalog
	selectable models.Catalog
	mu         sync.RWMutex
}

// New creates a resolver.
func New(src Source) *Resolver {
	return &Resolver{src: src, last: models.EmptyCatalog(), selectable: models.EmptyCatalog()}
}

// Selectable fetches the full public listing that keys may be bound to. The
// static list is never returned: its ids do not exist on the backend.
func (r *Resolver) Selectable(ctx context.Context) (models.Catalog, error) {
	list, err := r.src.Models(ctx, gateway.ModelQuery{})
	if err != nil {
		return models.EmptyCatalog(), err
	}
	r.mu.Lock()
	r.selectable = list
	r.mu.Unlock()
	return list, nil
}

// SelectableSize returns the length of the last public listing.
func (r *Resolver) SelectableSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selectable.Len()
}

// Resolve tries the developer's models, then popular models, then the
// static list.
func (r *Resolver) Resolve(ctx context.Context) Result {
	res := r.resolve(ctx)
	if res.Source != OriginStatic {
		r.mu.Lock()
		r.last = res.Catalog
		r.mu.Unlock()
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context) Result {
	mine, mineErr := r.src.MyModels(ctx)
	if mineErr == nil {
		return Result{Catalog: mine, Source: OriginDeveloper}
	}
	logger.Warn("developer models unavailable", "error", mineErr)
	if err := ctx.Err(); err != nil {
		return Result{Catalog: models.FoundCatalog(StaticModels()), Source: OriginStatic, Err: err}
	}

	popular, popErr := r.src.Models(ctx, gateway.ModelQuery{Sort: "popular", Limit: PopularLimit})
	if popErr == nil {
		return Result{Catalog: popular, Source: OriginPopular}
	}
	logger.Warn("popular models unavailable", "error", popErr)

	return Result{
		Catalog: models.FoundCatalog(StaticModels()),
		Source:  OriginStatic,
		Err:     errors.Join(mineErr, popErr),
	}
}

// Size returns the length of the last live catalog. The static fallback
// does not count.
func (r *Resolver) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last.Len()
}

// Last returns the last live catalog.
func (r *Resolver) Last() models.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Reset forgets the cached catalog.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.last = models.EmptyCatalog()
	r.selectable = models.EmptyCatalog()
	r.mu.Unlock()
}
