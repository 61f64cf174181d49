package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bryanwahyu/artscan/internal/domain/artworks"
	"github.com/bryanwahyu/artscan/internal/domain/vision"
)

// Client calls the CLIP inference sidecar over HTTP. One bounded retry on
// transport failure, nothing more; a wrong-dimension reply is fatal to the
// request and never truncated or padded.
type Client struct {
	endpoint string
	dim      int
	http     *http.Client
}

func New(endpoint string, dim int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		dim:      dim,
		http:     &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	ImageB64 string `json:"image_b64"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (c *Client) Embed(ctx context.Context, image []byte) (artworks.Vector, error) {
	body, err := json.Marshal(embedRequest{ImageB64: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		// single retry on transport failure
		resp, err = c.post(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vision.ErrEmbeddingUnavailable, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: embedding service returned %d", vision.ErrEmbeddingUnavailable, resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vision.ErrEmbeddingUnavailable, err)
	}
	if len(out.Embedding) != c.dim {
		return nil, fmt.Errorf("%w: dimension mismatch, got %d want %d",
			vision.ErrEmbeddingUnavailable, len(out.Embedding), c.dim)
	}

	return artworks.Vector(out.Embedding).Normalize(), nil
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}
