// Package api fetches shaders from Shadertoy.com.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinsley/shadercanvas"
)

const (
	shadertoyAPIURL   = "https://www.shadertoy.com/api/v1"
	shadertoyMediaURL = "https://www.shadertoy.com"
	userAgent         = "shadercanvas"
)

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

// Client talks to the Shadertoy API. The zero value is not usable; call New.
type Client struct {
	APIKey   string
	APIURL   string
	MediaURL string
	// CacheDir, when set, stores fetched shader JSON and media.
	CacheDir string

	http *http.Client
}

// New returns a client for the public site. An empty key is read from
// SHADERTOY_KEY.
func New(apikey string) *Client {
	if apikey == "" {
		apikey = os.Getenv("SHADERTOY_KEY")
	}
	return &Client{
		APIKey:   apikey,
		APIURL:   shadertoyAPIURL,
		MediaURL: shadertoyMediaURL,
		http:     &http.Client{Transport: &headerTransport{Transport: http.DefaultTransport}},
	}
}

// ShaderID extracts the id from a bare id or a shader URL.
func ShaderID(idOrURL string) string {
	id := strings.TrimSuffix(idOrURL, "/")
	if strings.Contains(id, "/") {
		id = filepath.Base(id)
	}
	return id
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad response status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// ShaderFromID fetches a shader by id or URL. When the API refuses the
// shader (not published with API access) the site endpoint is tried.
func (c *Client) ShaderFromID(ctx context.Context, idOrURL string) (*ShadertoyResponse, error) {
	shaderID := ShaderID(idOrURL)
	if resp, ok := c.cachedShader(shaderID); ok {
		return resp, nil
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("SHADERTOY_KEY environment variable not set. See https://www.shadertoy.com/howto#q2")
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	body, err := c.get(ctx, fmt.Sprintf("%s/shaders/%s?%s", c.APIURL, url.PathEscape(shaderID), q.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to load shader %s: %w", shaderID, err)
	}

	var shaderResp ShadertoyResponse
	if err := json.Unmarshal(body, &shaderResp); err != nil {
		return nil, fmt.Errorf("failed to decode shader JSON: %w", err)
	}
	if shaderResp.Error != "" {
		shadercanvas.Logger().Warn("shadertoy api refused shader, trying site endpoint", "id", shaderID, "err", shaderResp.Error)
		shader, err := c.rawShader(ctx, shaderID)
		if err != nil {
			return nil, err
		}
		shaderResp = ShadertoyResponse{Shader: shader}
	} else {
		shaderResp.IsAPI = true
	}
	if shaderResp.Shader == nil {
		return nil, fmt.Errorf("invalid JSON response: 'Shader' key is missing")
	}
	c.storeShader(shaderID, &shaderResp)
	return &shaderResp, nil
}

// rawShader posts to the site's own endpoint, which also serves shaders
// not published to the API.
func (c *Client) rawShader(ctx context.Context, shaderID string) (*Shader, error) {
	data := url.Values{}
	data.Set("s", fmt.Sprintf(`{"shaders":["%s"]}`, shaderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.MediaURL+"/shadertoy", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", shadertoyMediaURL)
	req.Header.Set("Referer", shadertoyMediaURL+"/browse")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raw shader data for %s: %w", shaderID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch raw shader data for %s: bad response status: %s", shaderID, resp.Status)
	}

	var raw []rawShader
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode raw shader JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("raw shader response is empty for %s", shaderID)
	}
	return rawShaderToShader(raw[0]), nil
}

func (c *Client) cachedShader(shaderID string) (*ShadertoyResponse, bool) {
	if c.CacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(c.CacheDir, "shaders", shaderID+".json"))
	if err != nil {
		return nil, false
	}
	var resp ShadertoyResponse
	if err := json.Unmarshal(data, &resp); err != nil || resp.Shader == nil {
		shadercanvas.Logger().Warn("ignoring bad cached shader", "id", shaderID, "err", err)
		return nil, false
	}
	return &resp, true
}

func (c *Client) storeShader(shaderID string, resp *ShadertoyResponse) {
	if c.CacheDir == "" {
		return
	}
	dir := filepath.Join(c.CacheDir, "shaders")
	data, err := json.Marshal(resp)
	if err == nil {
		err = os.MkdirAll(dir, 0o755)
	}
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, shaderID+".json"), data, 0o644)
	}
	if err != nil {
		shadercanvas.Logger().Warn("failed to cache shader", "id", shaderID, "err", err)
		return
	}
	shadercanvas.Logger().Debug("shader cached", "id", shaderID, "dir", dir)
}
