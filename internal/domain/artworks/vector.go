package artworks

import (
	"hash/fnv"
	"math"
)

// DefaultDimension matches the CLIP ViT-B-32 output.
const DefaultDimension = 512

// Vector is an image embedding.
type Vector []float64

// Cosine returns the cosine distance (1 - cosine similarity) to o.
// Zero-length or zero-norm vectors are maximally distant.
func (v Vector) Cosine(o Vector) float64 {
	if len(v) != len(o) || len(v) == 0 {
		return 1
	}
	var dot, nv, no float64
	for i := range v {
		dot += v[i] * o[i]
		nv += v[i] * v[i]
		no += o[i] * o[i]
	}
	if nv == 0 || no == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(nv)*math.Sqrt(no))
}

// Normalize returns the vector scaled to unit length.
func (v Vector) Normalize() Vector {
	var n float64
	for _, x := range v {
		n += x * x
	}
	n = math.Sqrt(n)
	if n == 0 {
		return v
	}
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// LockKey folds the vector into a coarse locality bucket: the sign bit of
// each component, hashed with FNV-1a. Vectors of the same image always land
// in the same bucket, so the bucket serializes concurrent first-time inserts.
func (v Vector) LockKey() int64 {
	h := fnv.New64a()
	var b byte
	for i, x := range v {
		if x > 0 {
			b |= 1 << (uint(i) % 8)
		}
		if i%8 == 7 {
			h.Write([]byte{b})
			b = 0
		}
	}
	if len(v)%8 != 0 {
		h.Write([]byte{b})
	}
	return int64(h.Sum64())
}
