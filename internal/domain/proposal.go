package domain

// Proposal is the root entity of one deliberation. It is created lazily by
// whichever proposal-scoped event arrives first and is never deleted.
//
// Lifecycle state is implicit in which fields are populated: a proposal with
// a proposer is proposed, one with snapped epochs has been snapshotted, one
// with approved ids has been tallied, and FullyExecuted marks the terminal
// state.
type Proposal struct {
	ID             string   `json:"id"`
	Proposer       *string  `json:"proposer,omitempty"`
	CreatedAt      *uint64  `json:"createdAt,omitempty"`
	ExpirationTime *uint64  `json:"expirationTime,omitempty"`
	SnapInterval   *uint64  `json:"snapInterval,omitempty"`
	Reps           []string `json:"reps,omitempty"`
	FullyExecuted  bool     `json:"fullyExecuted"`
	VRFRequestID   *uint64  `json:"vrfRequestId,omitempty"`

	ApprovedHeaderID  *uint64 `json:"approvedHeaderId,omitempty"`
	ApprovedCommandID *uint64 `json:"approvedCommandId,omitempty"`

	// SnappedEpochs and SnappedTimes grow in lockstep, one pair per
	// ProposalSnapped event, append-only.
	SnappedEpochs []uint64 `json:"snappedEpochs,omitempty"`
	SnappedTimes  []uint64 `json:"snappedTimes,omitempty"`

	// TopHeaders and TopCommands hold the snapshot-slot keys of the most
	// recent snapshot only, in rank order; each snapshot replaces them
	// wholesale.
	TopHeaders  []string `json:"topHeaders,omitempty"`
	TopCommands []string `json:"topCommands,omitempty"`
}
