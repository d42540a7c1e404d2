package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
)

type fakeSource struct {
	mineErr    error
	popularErr error
	mine       models.Catalog
	popular    models.Catalog
	lastQuery  gateway.ModelQuery
	popCalls   int
}

func (f *fakeSource) MyModels(ctx context.Context) (models.Catalog, error) {
	return f.mine, f.mineErr
}

func (f *fakeSource) Models(ctx context.Context, q gateway.ModelQuery) (models.Catalog, error) {
	f.popCalls++
	f.lastQuery = q
	return f.popular, f.popularErr
}

var errDown = errors.New("down")

func TestResolve(t *testing.T) {
	mine := models.FoundCatalog([]models.CatalogModel{{ID: "a"}, {ID: "b"}})
	popular := models.FoundCatalog([]models.CatalogModel{{ID: "p1"}})

	tests := []struct {
		name       string
		src        *fakeSource
		wantSource Origin
		wantLen    int
		wantErr    bool
		wantSize   int
	}{
		{"Developer", &fakeSource{mine: mine}, OriginDeveloper, 2, false, 2},
		{"DeveloperEmpty", &fakeSource{mine: models.EmptyCatalog()}, OriginDeveloper, 0, false, 0},
		{"Popular", &fakeSource{mineErr: errDown, popular: popular}, OriginPopular, 1, false, 1},
		{"Static", &fakeSource{mineErr: errDown, popularErr: errDown}, OriginStatic, 4, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.src)
			res := r.Resolve(context.Background())
			if res.Source != tt.wantSource {
				t.Errorf("Source = %v, want %v", res.Source, tt.wantSource)
			}
			if res.Catalog.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", res.Catalog.Len(), tt.wantLen)
			}
			if (res.Err != nil) != tt.wantErr {
				t.Errorf("Err = %v, wantErr %v", res.Err, tt.wantErr)
			}
			if r.Size() != tt.wantSize {
				t.Errorf("Size() = %d, want %d", r.Size(), tt.wantSize)
			}
		})
	}
}

func TestResolve_PopularQuery(t *testing.T) {
	src := &fakeSource{mineErr: errDown, popular: models.EmptyCatalog()}
	New(src).Resolve(context.Background())

	if src.lastQuery.Sort != "popular" || src.lastQuery.Limit != PopularLimit {
		t.Errorf("query = %+v", src.lastQuery)
	}
}

func TestResolve_DeveloperSkipsPopular(t *testing.T) {
	src := &fakeSource{mine: models.EmptyCatalog()}
	New(src).Resolve(context.Background())
	if src.popCalls != 0 {
		t.Errorf("popular calls = %d, want 0", src.popCalls)
	}
}

func TestResolve_StaticKeepsLastLive(t *testing.T) {
	src := &fakeSource{mine: models.FoundCatalog([]models.CatalogModel{{ID: "a"}})}
	r := New(src)
	r.Resolve(context.Background())

	src.mineErr = errDown
	src.popularErr = errDown
	r.Resolve(context.Background())

	if r.Size() != 1 {
		t.Errorf("Size() = %d, want last live size 1", r.Size())
	}
	r.Reset()
	if r.Size() != 0 {
		t.Errorf("Size() after Reset = %d", r.Size())
	}
}

func TestSelectable(t *testing.T) {
	listing := models.FoundCatalog([]models.CatalogModel{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}})

	t.Run("PublicListing", func(t *testing.T) {
		src := &fakeSource{mineErr: errDown, popular: listing}
		r := New(src)
		got, err := r.Selectable(context.Background())
		if err != nil {
			t.Fatalf("Selectable failed: %v", err)
		}
		if got.Len() != 3 || r.SelectableSize() != 3 {
			t.Errorf("Len() = %d SelectableSize() = %d, want 3", got.Len(), r.SelectableSize())
		}
		if src.lastQuery != (gateway.ModelQuery{}) {
			t.Errorf("query = %+v, want the unfiltered listing", src.lastQuery)
		}
		r.Reset()
		if r.SelectableSize() != 0 {
			t.Error("Reset should forget the listing")
		}
	})

	t.Run("FailureOffersNothing", func(t *testing.T) {
		r := New(&fakeSource{popularErr: errDown})
		got, err := r.Selectable(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		if got.Len() != 0 {
			t.Errorf("Len() = %d, want no static fallback", got.Len())
		}
		if r.SelectableSize() != 0 {
			t.Error("a failed listing must not gate scoped creation")
		}
	})
}

func TestStaticModels(t *testing.T) {
	want := []string{"GPT-4", "DALL-E 3", "Stable Diffusion XL", "Claude 2"}
	got := StaticModels()
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, m := range got {
		if m.Name != want[i] {
			t.Errorf("StaticModels()[%d] = %q, want %q", i, m.Name, want[i])
		}
	}
}
