package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var creds models.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "dev@example.com" {
			t.Errorf("email = %q", creds.Email)
		}
		w.Write([]byte(`{"token":"abc","user":{"_id":"u1","name":"Dev","email":"dev@example.com"}}`))
	}, "")

	resp, err := c.Login(context.Background(), models.Credentials{Email: "dev@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token != "abc" || resp.User.ID != "u1" || resp.User.Name != "Dev" {
		t.Errorf("Login() = %+v", resp)
	}
}

func TestRegister_SendsConsumerType(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"token":"abc","user":{"id":"u2"}}`))
	}, "")

	_, err := c.Register(context.Background(), models.Registration{
		Name: "N", Email: "n@example.com", Password: "secret1", Confirm: "secret1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if body["user_type"] != "consumer" {
		t.Errorf("user_type = %v", body["user_type"])
	}
	if _, ok := body["Confirm"]; ok {
		t.Error("confirm field must not be sent")
	}
}

func TestMyKeys_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"Wrapped", `{"api_keys":[{"_id":"k1","key":"sk-aaaaaaaaaaaa","status":"active"}]}`, 1},
		{"Bare", `[{"_id":"k1"},{"_id":"k2"}]`, 2},
		{"Null", `null`, 0},
		{"MissingField", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}, "t")
			keys, err := c.MyKeys(context.Background())
			if err != nil {
				t.Fatalf("MyKeys() error = %v", err)
			}
			if len(keys) != tt.want {
				t.Errorf("len = %d, want %d", len(keys), tt.want)
			}
		})
	}
}

func TestCreateKey(t *testing.T) {
	tests := []struct {
		name     string
		sel      models.ModelSelection
		response string
		wantBody string
	}{
		{"Unscoped", models.ModelSelection{}, `{"api_key":{"_id":"k9","key":"sk-123456789abcdef"}}`, `{}`},
		{"Scoped", models.ModelSelection{ModelID: "m1"}, `{"_id":"k9","key":"sk-123456789abcdef","modelId":"m1"}`, `{"modelId":"m1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(tt.response))
			}, "t")
			key, err := c.CreateKey(context.Background(), tt.sel)
			if err != nil {
				t.Fatalf("CreateKey() error = %v", err)
			}
			if gotBody != tt.wantBody {
				t.Errorf("body = %s, want %s", gotBody, tt.wantBody)
			}
			if key.ID != "k9" || key.Secret != "sk-123456789abcdef" {
				t.Errorf("key = %+v", key)
			}
		})
	}
}

func TestRevokeKey_EscapesID(t *testing.T) {
	var method, rawPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		rawPath = r.URL.EscapedPath()
		w.Write([]byte(`{"message":"revoked"}`))
	}, "t")

	if err := c.RevokeKey(context.Background(), "a/b"); err != nil {
		t.Fatalf("RevokeKey() error = %v", err)
	}
	if method != http.MethodPatch {
		t.Errorf("method = %s", method)
	}
	if rawPath != "/api/keys/a%2Fb/revoke" {
		t.Errorf("path = %s", rawPath)
	}
}

func TestMyUsage_Shapes(t *testing.T) {
	for _, body := range []string{
		`[{"timestamp":"2024-05-01T10:00:00Z","modelId":"m1"}]`,
		`{"usage":[{"timestamp":"2024-05-01T10:00:00Z","modelId":"m1"}]}`,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}, "t")
		entries, err := c.MyUsage(context.Background())
		if err != nil {
			t.Fatalf("MyUsage() error = %v", err)
		}
		if len(entries) != 1 || entries[0].ModelID != "m1" {
			t.Errorf("entries = %+v", entries)
		}
	}
}

func TestDeveloperStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/usage/developer/stats" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"todayCalls":120,"monthlyUsage":3400,"activeModels":6,"modelUsage":[{"modelName":"A","count":3}]}`))
	}, "t")

	stats, err := c.DeveloperStats(context.Background())
	if err != nil {
		t.Fatalf("DeveloperStats() error = %v", err)
	}
	if stats.TodayCalls != 120 || stats.MonthlyUsage != 3400 || stats.ActiveModels != 6 || len(stats.ModelUsage) != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestModels_Query(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{"models":[{"_id":"m1","name":"GPT-4"}]}`))
	}, "")

	cat, err := c.Models(context.Background(), ModelQuery{Sort: "popular", Limit: 4})
	if err != nil {
		t.Fatalf("Models() error = %v", err)
	}
	if query != "limit=4&sort=popular" {
		t.Errorf("query = %q", query)
	}
	if cat.Kind() != models.CatalogFound || cat.Len() != 1 {
		t.Errorf("catalog = %v len %d", cat.Kind(), cat.Len())
	}
}

func TestProfile_Wrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"_id":"u1","email":"a@b.co"}}`))
	}, "t")

	id, err := c.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if id.ID != "u1" || id.Email != "a@b.co" {
		t.Errorf("Profile() = %+v", id)
	}
}

func TestNormalizeCatalog(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind models.CatalogKind
		wantLen  int
		wantErr  bool
	}{
		{"BareList", `[{"_id":"a"},{"_id":"b"}]`, models.CatalogFound, 2, false},
		{"Wrapped", `{"models":[{"_id":"a"}]}`, models.CatalogFound, 1, false},
		{"EmptyList", `[]`, models.CatalogEmpty, 0, false},
		{"WrappedEmpty", `{"models":[]}`, models.CatalogEmpty, 0, false},
		{"Null", `null`, models.CatalogEmpty, 0, false},
		{"MissingField", `{"total":0}`, models.CatalogEmpty, 0, false},
		{"WrongShape", `{"models":"nope"}`, models.CatalogEmpty, 0, true},
		{"Scalar", `42`, models.CatalogEmpty, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := NormalizeCatalog(Payload(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if cat.Kind() != tt.wantKind || cat.Len() != tt.wantLen {
				t.Errorf("got %v/%d, want %v/%d", cat.Kind(), cat.Len(), tt.wantKind, tt.wantLen)
			}
		})
	}
}
