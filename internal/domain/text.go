package domain

// Text is a standalone DAO text document. Title and Body arrive via the
// content resolver.
type Text struct {
	ID          string  `json:"id"`
	MetadataCID string  `json:"metadataCid,omitempty"`
	Title       *string `json:"title,omitempty"`
	Body        *string `json:"body,omitempty"`
}
