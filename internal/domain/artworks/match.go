package artworks

// MatchThreshold is the cosine distance below which a candidate counts as
// the same physical artwork. Deliberate policy constant, overridable only
// through server config, never per request.
const MatchThreshold = 0.15

// Candidate pairs an artwork with its cosine distance to the query.
type Candidate struct {
	Artwork  *Artwork `json:"artwork"`
	Distance float64  `json:"distance"`
}

// Best selects the accepted match from ranked candidates, or nil when none
// falls under the threshold. Smallest distance wins; on an exact tie the
// verified row (museum_api/admin) is preferred over ai_generated/community.
func Best(cands []Candidate, threshold float64) *Candidate {
	var best *Candidate
	for i := range cands {
		c := &cands[i]
		if c.Distance >= threshold {
			continue
		}
		switch {
		case best == nil:
			best = c
		case c.Distance < best.Distance:
			best = c
		case c.Distance == best.Distance && c.Artwork.IsVerified && !best.Artwork.IsVerified:
			best = c
		}
	}
	return best
}
