// Package models holds the gorm row types backing the projection. Keys are
// the deterministic entity keys, so event replay maps to upserts.
package models

import (
	"github.com/lib/pq"
)

type Proposal struct {
	ID             string         `json:"id" gorm:"primaryKey;type:text"`
	Proposer       *string        `json:"proposer" gorm:"type:text"`
	CreatedAt      *int64         `json:"createdAt"`
	ExpirationTime *int64         `json:"expirationTime"`
	SnapInterval   *int64         `json:"snapInterval"`
	Reps           pq.StringArray `json:"reps" gorm:"type:text[]"`
	FullyExecuted  bool           `json:"fullyExecuted" gorm:"not null;default:false"`
	VRFRequestID   *int64         `json:"vrfRequestId"`

	ApprovedHeaderID  *int64 `json:"approvedHeaderId"`
	ApprovedCommandID *int64 `json:"approvedCommandId"`

	SnappedEpochs pq.Int64Array  `json:"snappedEpochs" gorm:"type:bigint[]"`
	SnappedTimes  pq.Int64Array  `json:"snappedTimes" gorm:"type:bigint[]"`
	TopHeaders    pq.StringArray `json:"topHeaders" gorm:"type:text[]"`
	TopCommands   pq.StringArray `json:"topCommands" gorm:"type:text[]"`
}

type Header struct {
	ID          string  `json:"id" gorm:"primaryKey;type:text"`
	ProposalID  string  `json:"proposal" gorm:"type:text;index"`
	HeaderID    int64   `json:"headerId"`
	MetadataCID string  `json:"metadataCid" gorm:"type:text"`
	CreatedAt   int64   `json:"createdAt"`
	Title       *string `json:"title" gorm:"type:text"`
	Body        *string `json:"body" gorm:"type:text"`
}

type Command struct {
	ID         string `json:"id" gorm:"primaryKey;type:text"`
	ProposalID string `json:"proposal" gorm:"type:text;index"`
	CommandID  int64  `json:"commandId"`
	CreatedAt  int64  `json:"createdAt"`
}

type Action struct {
	ID          string `json:"id" gorm:"primaryKey;type:text"`
	CommandKey  string `json:"command" gorm:"type:text;index"`
	ActionIndex int    `json:"actionIndex"`
	Func        string `json:"func" gorm:"type:text"`
	ABIParams   []byte `json:"abiParams" gorm:"type:bytea"`
	Status      string `json:"status" gorm:"type:text;not null"`
}

type Vote struct {
	ID               string        `json:"id" gorm:"primaryKey;type:text"`
	ProposalID       string        `json:"proposal" gorm:"type:text;index"`
	Rep              string        `json:"rep" gorm:"type:text"`
	RankedHeaderIDs  pq.Int64Array `json:"rankedHeaderIds" gorm:"type:bigint[]"`
	RankedCommandIDs pq.Int64Array `json:"rankedCommandIds" gorm:"type:bigint[]"`
	CreatedAt        int64         `json:"createdAt"`
	UpdatedAt        int64         `json:"updatedAt"`
}

type TopHeader struct {
	ID         string `json:"id" gorm:"primaryKey;type:text"`
	ProposalID string `json:"proposal" gorm:"type:text;index:idx_top_headers_scope"`
	Epoch      int64  `json:"epoch" gorm:"index:idx_top_headers_scope"`
	Rank       int    `json:"rank"`
	HeaderKey  string `json:"header" gorm:"type:text"`
}

type TopCommand struct {
	ID         string `json:"id" gorm:"primaryKey;type:text"`
	ProposalID string `json:"proposal" gorm:"type:text;index:idx_top_commands_scope"`
	Epoch      int64  `json:"epoch" gorm:"index:idx_top_commands_scope"`
	Rank       int    `json:"rank"`
	CommandKey string `json:"command" gorm:"type:text"`
}

type Text struct {
	ID          string  `json:"id" gorm:"primaryKey;type:text"`
	MetadataCID string  `json:"metadataCid" gorm:"type:text"`
	Title       *string `json:"title" gorm:"type:text"`
	Body        *string `json:"body" gorm:"type:text"`
}

type Member struct {
	ID          string  `json:"id" gorm:"primaryKey;type:text"`
	Addr        string  `json:"addr" gorm:"type:text;index"`
	MetadataCID string  `json:"metadataCid" gorm:"type:text"`
	Name        *string `json:"name" gorm:"type:text"`
	Image       *string `json:"image" gorm:"type:text"`
	Bio         *string `json:"bio" gorm:"type:text"`
}

type DeliberationConfig struct {
	ID             string `json:"id" gorm:"primaryKey;type:text"`
	ExpiryDuration int64  `json:"expiryDuration"`
	SnapInterval   int64  `json:"snapInterval"`
	RepsNum        int64  `json:"repsNum"`
	QuorumScore    int64  `json:"quorumScore"`
	LastUpdated    int64  `json:"lastUpdated"`
}
