package vision

import "errors"

// ErrEmbeddingUnavailable indicates the embedding model call failed or
// returned a vector of the wrong dimension. Never silently padded.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// ErrAnalysisUnavailable indicates the generative analysis call failed.
// Not retried automatically; the caller may resubmit the scan.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// ErrInvalidImage indicates the upload could not be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")
