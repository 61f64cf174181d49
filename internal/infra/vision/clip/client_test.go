package clip

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/artscan/internal/domain/vision"
)

func embedServer(t *testing.T, dim int, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		var body struct {
			ImageB64 string `json:"image_b64"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotEmpty(t, body.ImageB64)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		emb := make([]float64, dim)
		for i := range emb {
			emb[i] = float64(i + 1)
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": emb})
	}))
}

func TestEmbed(t *testing.T) {
	srv := embedServer(t, 4, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 4, time.Second)
	v, err := c.Embed(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Len(t, v, 4)

	// response is normalized to unit length
	var n float64
	for _, x := range v {
		n += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(n), 1e-9)
}

func TestEmbedDimensionMismatch(t *testing.T) {
	srv := embedServer(t, 3, http.StatusOK)
	defer srv.Close()

	c := New(srv.URL, 4, time.Second)
	_, err := c.Embed(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, vision.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbedServerError(t *testing.T) {
	srv := embedServer(t, 4, http.StatusInternalServerError)
	defer srv.Close()

	c := New(srv.URL, 4, time.Second)
	_, err := c.Embed(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, vision.ErrEmbeddingUnavailable)
}

func TestEmbedRetriesTransportFailureOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// kill the connection mid-response to force a transport error
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{1, 0, 0, 0}})
	}))
	defer srv.Close()

	c := New(srv.URL, 4, time.Second)
	v, err := c.Embed(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Len(t, v, 4)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEmbedUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", 4, 200*time.Millisecond)
	_, err := c.Embed(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, vision.ErrEmbeddingUnavailable)
}
