package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

// consumerUserType is sent with every registration from this client.
const consumerUserType = "consumer"

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var out models.AuthResponse
	p, err := c.Request(ctx, http.MethodPost, "/users/login", creds, nil)
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

// Register creates a consumer account and returns its session.
func (c *Client) Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error) {
	var out models.AuthResponse
	reg.UserType = consumerUserType
	p, err := c.Request(ctx, http.MethodPost, "/users/register", reg, nil)
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

// ForgotPassword requests a reset email. The server message is returned.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	p, err := c.Request(ctx, http.MethodPost, "/users/forgot-password", models.PasswordReset{Email: email}, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Message string `json:"message"`
	}
	_ = p.Decode(&out)
	if out.Message == "" {
		out.Message = "If that address is registered, a reset link has been sent."
	}
	return out.Message, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (models.Identity, error) {
	p, err := c.Request(ctx, http.MethodGet, "/users/profile", nil, nil)
	if err != nil {
		return models.Identity{}, err
	}
	return decodeObject[models.Identity](p, "user")
}

// MyKeys lists the caller's API keys.
func (c *Client) MyKeys(ctx context.Context) ([]models.APIKey, error) {
	p, err := c.Request(ctx, http.MethodGet, "/keys/my-keys", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.APIKey](p, "api_keys")
}

// CreateKey issues a new key, scoped to sel.ModelID when one is selected.
func (c *Client) CreateKey(ctx context.Context, sel models.ModelSelection) (models.APIKey, error) {
	body := map[string]string{}
	if !sel.IsZero() {
		body["modelId"] = sel.ModelID
	}
	p, err := c.Request(ctx, http.MethodPost, "/keys", body, nil)
	if err != nil {
		return models.APIKey{}, err
	}
	return decodeObject[models.APIKey](p, "api_key")
}

// RevokeKey deactivates a key.
func (c *Client) RevokeKey(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodPatch, pathf("/keys", id, "revoke"), map[string]any{}, nil)
	return err
}

// KeyDetails fetches a single key.
func (c *Client) KeyDetails(ctx context.Context, id string) (models.APIKey, error) {
	p, err := c.Request(ctx, http.MethodGet, pathf("/keys", id), nil, nil)
	if err != nil {
		return models.APIKey{}, err
	}
	return decodeObject[models.APIKey](p, "api_key")
}

// MyUsage returns the caller's raw usage log.
func (c *Client) MyUsage(ctx context.Context) ([]models.UsageLogEntry, error) {
	return c.usageLog(ctx, "/usage/my-usage")
}

// KeyUsage returns the usage log of one key.
func (c *Client) KeyUsage(ctx context.Context, id string) ([]models.UsageLogEntry, error) {
	return c.usageLog(ctx, pathf("/usage/key", id))
}

// ModelUsage returns the usage log of one model.
func (c *Client) ModelUsage(ctx context.Context, modelID string) ([]models.UsageLogEntry, error) {
	return c.usageLog(ctx, pathf("/usage/model", modelID))
}

func (c *Client) usageLog(ctx context.Context, path string) ([]models.UsageLogEntry, error) {
	p, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.UsageLogEntry](p, "usage")
}

// DeveloperStats returns the pre-aggregated usage statistics.
func (c *Client) DeveloperStats(ctx context.Context) (models.DeveloperStats, error) {
	var out models.DeveloperStats
	p, err := c.Request(ctx, http.MethodGet, "/usage/developer/stats", nil, nil)
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

// ModelQuery filters the public model listing.
type ModelQuery struct {
	Sort  string
	Limit int
}

func (q ModelQuery) values() url.Values {
	v := url.Values{}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Models lists the public catalog.
func (c *Client) Models(ctx context.Context, q ModelQuery) (models.Catalog, error) {
	p, err := c.Request(ctx, http.MethodGet, "/models", nil, q.values())
	if err != nil {
		return models.EmptyCatalog(), err
	}
	return NormalizeCatalog(p)
}

// Model fetches one catalog entry.
func (c *Client) Model(ctx context.Context, id string) (models.CatalogModel, error) {
	p, err := c.Request(ctx, http.MethodGet, pathf("/models", id), nil, nil)
	if err != nil {
		return models.CatalogModel{}, err
	}
	return decodeObject[models.CatalogModel](p, "model")
}

// MyModels lists the models the caller has used.
func (c *Client) MyModels(ctx context.Context) (models.Catalog, error) {
	p, err := c.Request(ctx, http.MethodGet, "/models/developer/my-models", nil, nil)
	if err != nil {
		return models.EmptyCatalog(), err
	}
	return NormalizeCatalog(p)
}
