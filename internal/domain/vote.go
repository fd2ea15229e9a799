package domain

// Vote is one representative's ranked choice for a proposal. A later vote
// from the same representative overwrites the rankings in place.
type Vote struct {
	ID               string   `json:"id"`
	ProposalID       string   `json:"proposal"`
	Rep              string   `json:"rep"`
	RankedHeaderIDs  []uint64 `json:"rankedHeaderIds"`
	RankedCommandIDs []uint64 `json:"rankedCommandIds"`
	CreatedAt        uint64   `json:"createdAt"`
	UpdatedAt        uint64   `json:"updatedAt"`
}
