package domain

// Member is a DAO member. Name, Image and Bio are populated asynchronously
// from the member's off-chain metadata document when it resolves.
type Member struct {
	ID          string  `json:"id"`
	Addr        string  `json:"addr"`
	MetadataCID string  `json:"metadataCid,omitempty"`
	Name        *string `json:"name,omitempty"`
	Image       *string `json:"image,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}
