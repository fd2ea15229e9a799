package domain

// DeliberationConfig is the singleton DAO-wide deliberation configuration.
type DeliberationConfig struct {
	ID             string `json:"id"`
	ExpiryDuration uint64 `json:"expiryDuration"`
	SnapInterval   uint64 `json:"snapInterval"`
	RepsNum        uint64 `json:"repsNum"`
	QuorumScore    uint64 `json:"quorumScore"`
	LastUpdated    uint64 `json:"lastUpdated"`
}
