package domain

// ActionStatus tracks the execution state of one Action.
type ActionStatus string

const (
	ActionProposed ActionStatus = "Proposed"
	ActionExecuted ActionStatus = "Executed"
)

// Header is a forked proposal document version. Headers are immutable once
// created; a new version gets a new header id.
type Header struct {
	ID          string  `json:"id"`
	ProposalID  string  `json:"proposal"`
	HeaderID    uint64  `json:"headerId"`
	MetadataCID string  `json:"metadataCid,omitempty"`
	CreatedAt   uint64  `json:"createdAt"`
	Title       *string `json:"title,omitempty"`
	Body        *string `json:"body,omitempty"`
}

// Command is a forked bundle of executable actions.
type Command struct {
	ID         string `json:"id"`
	ProposalID string `json:"proposal"`
	CommandID  uint64 `json:"commandId"`
	CreatedAt  uint64 `json:"createdAt"`
}

// Action is one executable step of a Command. Immutable except for the
// Proposed -> Executed status transition.
type Action struct {
	ID          string       `json:"id"`
	CommandKey  string       `json:"command"`
	ActionIndex int          `json:"actionIndex"`
	Func        string       `json:"func"`
	ABIParams   []byte       `json:"abiParams"`
	Status      ActionStatus `json:"status"`
}
