package domain

// TopHeader is one ranked slot of a header snapshot for an epoch.
// Slots are upserted: re-snapshotting an epoch overwrites the same keys.
type TopHeader struct {
	ID         string `json:"id"`
	ProposalID string `json:"proposal"`
	Epoch      uint64 `json:"epoch"`
	Rank       int    `json:"rank"`
	HeaderKey  string `json:"header"`
}

// TopCommand is one ranked slot of a command snapshot for an epoch.
type TopCommand struct {
	ID         string `json:"id"`
	ProposalID string `json:"proposal"`
	Epoch      uint64 `json:"epoch"`
	Rank       int    `json:"rank"`
	CommandKey string `json:"command"`
}
