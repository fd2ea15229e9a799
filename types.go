package textdao

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType identifies one ledger event shape.
type EventType string

const (
	TypeRepresentativesAssigned   EventType = "RepresentativesAssigned"
	TypeProposed                  EventType = "Proposed"
	TypeHeaderCreated             EventType = "HeaderCreated"
	TypeCommandCreated            EventType = "CommandCreated"
	TypeVoted                     EventType = "Voted"
	TypeProposalSnapped           EventType = "ProposalSnapped"
	TypeProposalTallied           EventType = "ProposalTallied"
	TypeProposalTalliedWithTie    EventType = "ProposalTalliedWithTie"
	TypeProposalExecuted          EventType = "ProposalExecuted"
	TypeVRFRequested              EventType = "VRFRequested"
	TypeDeliberationConfigUpdated EventType = "DeliberationConfigUpdated"
	TypeTextCreated               EventType = "TextCreated"
	TypeTextUpdated               EventType = "TextUpdated"
	TypeTextDeleted               EventType = "TextDeleted"
	TypeMemberAdded               EventType = "MemberAdded"
	TypeMemberUpdated             EventType = "MemberUpdated"
	TypeMemberRemoved             EventType = "MemberRemoved"
)

// Event is one entry of the ledger's ordered log. Events are delivered
// strictly in (BlockNumber, LogIndex) order; Timestamp is the timestamp of
// the emitting block.
type Event struct {
	Type        EventType   `json:"type"`
	BlockNumber uint64      `json:"blockNumber"`
	LogIndex    uint        `json:"logIndex"`
	TxHash      common.Hash `json:"txHash"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     any         `json:"payload"`
}

type RepresentativesAssigned struct {
	ProposalID uint64           `json:"pid"`
	Reps       []common.Address `json:"reps"`
}

type Proposed struct {
	ProposalID     uint64         `json:"pid"`
	Proposer       common.Address `json:"proposer"`
	CreatedAt      uint64         `json:"createdAt"`
	ExpirationTime uint64         `json:"expirationTime"`
	SnapInterval   uint64         `json:"snapInterval"`
}

type HeaderCreated struct {
	ProposalID  uint64 `json:"pid"`
	HeaderID    uint64 `json:"headerId"`
	MetadataCID string `json:"metadataCid"`
}

// EventAction is one executable step carried by a CommandCreated payload.
type EventAction struct {
	FuncSig   string `json:"funcSig"`
	ABIParams []byte `json:"abiParams"`
}

type CommandCreated struct {
	ProposalID uint64        `json:"pid"`
	CommandID  uint64        `json:"commandId"`
	Actions    []EventAction `json:"actions"`
}

type Voted struct {
	ProposalID       uint64         `json:"pid"`
	Rep              common.Address `json:"rep"`
	RankedHeaderIDs  []uint64       `json:"rankedHeaderIds"`
	RankedCommandIDs []uint64       `json:"rankedCommandIds"`
}

type ProposalSnapped struct {
	ProposalID    uint64   `json:"pid"`
	Epoch         uint64   `json:"epoch"`
	TopHeaderIDs  []uint64 `json:"topHeaderIds"`
	TopCommandIDs []uint64 `json:"topCommandIds"`
}

type ProposalTallied struct {
	ProposalID        uint64 `json:"pid"`
	ApprovedHeaderID  uint64 `json:"approvedHeaderId"`
	ApprovedCommandID uint64 `json:"approvedCommandId"`
}

type ProposalTalliedWithTie struct {
	ProposalID             uint64   `json:"pid"`
	Epoch                  uint64   `json:"epoch"`
	TopHeaderIDs           []uint64 `json:"topHeaderIds"`
	TopCommandIDs          []uint64 `json:"topCommandIds"`
	ExtendedExpirationTime uint64   `json:"extendedExpirationTime"`
}

type ProposalExecuted struct {
	ProposalID        uint64 `json:"pid"`
	ApprovedCommandID uint64 `json:"approvedCommandId"`
}

type VRFRequested struct {
	ProposalID uint64 `json:"pid"`
	RequestID  uint64 `json:"requestId"`
}

type DeliberationConfigUpdated struct {
	ExpiryDuration uint64 `json:"expiryDuration"`
	SnapInterval   uint64 `json:"snapInterval"`
	RepsNum        uint64 `json:"repsNum"`
	QuorumScore    uint64 `json:"quorumScore"`
}

type TextCreated struct {
	TextID      uint64 `json:"textId"`
	MetadataCID string `json:"metadataCid"`
}

type TextUpdated struct {
	TextID         uint64 `json:"textId"`
	NewMetadataCID string `json:"newMetadataCid"`
}

type TextDeleted struct {
	TextID uint64 `json:"textId"`
}

type MemberAdded struct {
	MemberID    uint64         `json:"memberId"`
	Addr        common.Address `json:"addr"`
	MetadataCID string         `json:"metadataCid"`
}

type MemberUpdated struct {
	MemberID    uint64         `json:"memberId"`
	Addr        common.Address `json:"addr"`
	MetadataCID string         `json:"metadataCid"`
}

type MemberRemoved struct {
	MemberID uint64 `json:"memberId"`
}
