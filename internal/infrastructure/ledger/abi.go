package ledger

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/textdao/indexer"
)

const textdaoABI = `[
	{"type":"event","name":"RepresentativesAssigned","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"reps","type":"address[]","indexed":false}]},
	{"type":"event","name":"Proposed","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"proposer","type":"address","indexed":false},
		{"name":"createdAt","type":"uint256","indexed":false},
		{"name":"expirationTime","type":"uint256","indexed":false},
		{"name":"snapInterval","type":"uint256","indexed":false}]},
	{"type":"event","name":"HeaderCreated","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"headerId","type":"uint256","indexed":false},
		{"name":"metadataCid","type":"string","indexed":false}]},
	{"type":"event","name":"CommandCreated","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"commandId","type":"uint256","indexed":false},
		{"name":"actions","type":"tuple[]","indexed":false,"components":[
			{"name":"funcSig","type":"string"},
			{"name":"abiParams","type":"bytes"}]}]},
	{"type":"event","name":"Voted","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"rep","type":"address","indexed":false},
		{"name":"rankedHeaderIds","type":"uint256[]","indexed":false},
		{"name":"rankedCommandIds","type":"uint256[]","indexed":false}]},
	{"type":"event","name":"ProposalSnapped","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"epoch","type":"uint256","indexed":false},
		{"name":"topHeaderIds","type":"uint256[]","indexed":false},
		{"name":"topCommandIds","type":"uint256[]","indexed":false}]},
	{"type":"event","name":"ProposalTallied","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"approvedHeaderId","type":"uint256","indexed":false},
		{"name":"approvedCommandId","type":"uint256","indexed":false}]},
	{"type":"event","name":"ProposalTalliedWithTie","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"epoch","type":"uint256","indexed":false},
		{"name":"topHeaderIds","type":"uint256[]","indexed":false},
		{"name":"topCommandIds","type":"uint256[]","indexed":false},
		{"name":"extendedExpirationTime","type":"uint256","indexed":false}]},
	{"type":"event","name":"ProposalExecuted","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"approvedCommandId","type":"uint256","indexed":false}]},
	{"type":"event","name":"VRFRequested","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"requestId","type":"uint256","indexed":false}]},
	{"type":"event","name":"DeliberationConfigUpdated","inputs":[
		{"name":"expiryDuration","type":"uint256","indexed":false},
		{"name":"snapInterval","type":"uint256","indexed":false},
		{"name":"repsNum","type":"uint256","indexed":false},
		{"name":"quorumScore","type":"uint256","indexed":false}]},
	{"type":"event","name":"DeliberationConfigUpdatedByProposal","inputs":[
		{"name":"pid","type":"uint256","indexed":false},
		{"name":"expiryDuration","type":"uint256","indexed":false},
		{"name":"snapInterval","type":"uint256","indexed":false},
		{"name":"repsNum","type":"uint256","indexed":false},
		{"name":"quorumScore","type":"uint256","indexed":false}]},
	{"type":"event","name":"TextCreated","inputs":[
		{"name":"textId","type":"uint256","indexed":false},
		{"name":"metadataCid","type":"string","indexed":false}]},
	{"type":"event","name":"TextUpdated","inputs":[
		{"name":"textId","type":"uint256","indexed":false},
		{"name":"newMetadataCid","type":"string","indexed":false}]},
	{"type":"event","name":"TextDeleted","inputs":[
		{"name":"textId","type":"uint256","indexed":false}]},
	{"type":"event","name":"MemberAdded","inputs":[
		{"name":"memberId","type":"uint256","indexed":false},
		{"name":"addr","type":"address","indexed":false},
		{"name":"metadataCid","type":"string","indexed":false}]},
	{"type":"event","name":"MemberUpdated","inputs":[
		{"name":"memberId","type":"uint256","indexed":false},
		{"name":"addr","type":"address","indexed":false},
		{"name":"metadataCid","type":"string","indexed":false}]},
	{"type":"event","name":"MemberRemoved","inputs":[
		{"name":"memberId","type":"uint256","indexed":false}]}
]`

// Decoder turns raw contract logs into typed events.
type Decoder struct {
	abi abi.ABI
}

func NewDecoder() (*Decoder, error) {
	parsed, err := abi.JSON(strings.NewReader(textdaoABI))
	if err != nil {
		return nil, errors.Wrap(err, "parse contract abi")
	}
	return &Decoder{abi: parsed}, nil
}

// Decode decodes one log. Returns (event, true) for recognized events; logs
// whose topic is not part of the deliberation surface yield ok == false.
func (d *Decoder) Decode(log types.Log, timestamp time.Time) (textdao.Event, bool, error) {
	if len(log.Topics) == 0 {
		return textdao.Event{}, false, nil
	}

	event, err := d.abi.EventByID(log.Topics[0])
	if err != nil {
		return textdao.Event{}, false, nil
	}

	payload, err := d.decodePayload(event.Name, log.Data)
	if err != nil {
		return textdao.Event{}, false, errors.Wrapf(err, "decode %s at block %d", event.Name, log.BlockNumber)
	}

	// The by-proposal config variant carries the same payload and is
	// projected through the same handler.
	typ := textdao.EventType(event.Name)
	if event.Name == "DeliberationConfigUpdatedByProposal" {
		typ = textdao.TypeDeliberationConfigUpdated
	}

	return textdao.Event{
		Type:        typ,
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
		TxHash:      log.TxHash,
		Timestamp:   timestamp,
		Payload:     payload,
	}, true, nil
}

func (d *Decoder) decodePayload(name string, data []byte) (any, error) {
	switch name {
	case "RepresentativesAssigned":
		var raw struct {
			Pid  *big.Int
			Reps []common.Address
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.RepresentativesAssigned{
			ProposalID: raw.Pid.Uint64(),
			Reps:       raw.Reps,
		}, nil

	case "Proposed":
		var raw struct {
			Pid            *big.Int
			Proposer       common.Address
			CreatedAt      *big.Int
			ExpirationTime *big.Int
			SnapInterval   *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.Proposed{
			ProposalID:     raw.Pid.Uint64(),
			Proposer:       raw.Proposer,
			CreatedAt:      raw.CreatedAt.Uint64(),
			ExpirationTime: raw.ExpirationTime.Uint64(),
			SnapInterval:   raw.SnapInterval.Uint64(),
		}, nil

	case "HeaderCreated":
		var raw struct {
			Pid         *big.Int
			HeaderId    *big.Int
			MetadataCid string
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.HeaderCreated{
			ProposalID:  raw.Pid.Uint64(),
			HeaderID:    raw.HeaderId.Uint64(),
			MetadataCID: raw.MetadataCid,
		}, nil

	case "CommandCreated":
		var raw struct {
			Pid       *big.Int
			CommandId *big.Int
			Actions   []struct {
				FuncSig   string `abi:"funcSig"`
				AbiParams []byte `abi:"abiParams"`
			}
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		actions := make([]textdao.EventAction, len(raw.Actions))
		for i, action := range raw.Actions {
			actions[i] = textdao.EventAction{
				FuncSig:   action.FuncSig,
				ABIParams: action.AbiParams,
			}
		}
		return textdao.CommandCreated{
			ProposalID: raw.Pid.Uint64(),
			CommandID:  raw.CommandId.Uint64(),
			Actions:    actions,
		}, nil

	case "Voted":
		var raw struct {
			Pid              *big.Int
			Rep              common.Address
			RankedHeaderIds  []*big.Int
			RankedCommandIds []*big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.Voted{
			ProposalID:       raw.Pid.Uint64(),
			Rep:              raw.Rep,
			RankedHeaderIDs:  toUint64s(raw.RankedHeaderIds),
			RankedCommandIDs: toUint64s(raw.RankedCommandIds),
		}, nil

	case "ProposalSnapped":
		var raw struct {
			Pid           *big.Int
			Epoch         *big.Int
			TopHeaderIds  []*big.Int
			TopCommandIds []*big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.ProposalSnapped{
			ProposalID:    raw.Pid.Uint64(),
			Epoch:         raw.Epoch.Uint64(),
			TopHeaderIDs:  toUint64s(raw.TopHeaderIds),
			TopCommandIDs: toUint64s(raw.TopCommandIds),
		}, nil

	case "ProposalTallied":
		var raw struct {
			Pid               *big.Int
			ApprovedHeaderId  *big.Int
			ApprovedCommandId *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.ProposalTallied{
			ProposalID:        raw.Pid.Uint64(),
			ApprovedHeaderID:  raw.ApprovedHeaderId.Uint64(),
			ApprovedCommandID: raw.ApprovedCommandId.Uint64(),
		}, nil

	case "ProposalTalliedWithTie":
		var raw struct {
			Pid                    *big.Int
			Epoch                  *big.Int
			TopHeaderIds           []*big.Int
			TopCommandIds          []*big.Int
			ExtendedExpirationTime *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.ProposalTalliedWithTie{
			ProposalID:             raw.Pid.Uint64(),
			Epoch:                  raw.Epoch.Uint64(),
			TopHeaderIDs:           toUint64s(raw.TopHeaderIds),
			TopCommandIDs:          toUint64s(raw.TopCommandIds),
			ExtendedExpirationTime: raw.ExtendedExpirationTime.Uint64(),
		}, nil

	case "ProposalExecuted":
		var raw struct {
			Pid               *big.Int
			ApprovedCommandId *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.ProposalExecuted{
			ProposalID:        raw.Pid.Uint64(),
			ApprovedCommandID: raw.ApprovedCommandId.Uint64(),
		}, nil

	case "VRFRequested":
		var raw struct {
			Pid       *big.Int
			RequestId *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.VRFRequested{
			ProposalID: raw.Pid.Uint64(),
			RequestID:  raw.RequestId.Uint64(),
		}, nil

	case "DeliberationConfigUpdated":
		var raw struct {
			ExpiryDuration *big.Int
			SnapInterval   *big.Int
			RepsNum        *big.Int
			QuorumScore    *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.DeliberationConfigUpdated{
			ExpiryDuration: raw.ExpiryDuration.Uint64(),
			SnapInterval:   raw.SnapInterval.Uint64(),
			RepsNum:        raw.RepsNum.Uint64(),
			QuorumScore:    raw.QuorumScore.Uint64(),
		}, nil

	case "DeliberationConfigUpdatedByProposal":
		var raw struct {
			Pid            *big.Int
			ExpiryDuration *big.Int
			SnapInterval   *big.Int
			RepsNum        *big.Int
			QuorumScore    *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.DeliberationConfigUpdated{
			ExpiryDuration: raw.ExpiryDuration.Uint64(),
			SnapInterval:   raw.SnapInterval.Uint64(),
			RepsNum:        raw.RepsNum.Uint64(),
			QuorumScore:    raw.QuorumScore.Uint64(),
		}, nil

	case "TextCreated":
		var raw struct {
			TextId      *big.Int
			MetadataCid string
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.TextCreated{
			TextID:      raw.TextId.Uint64(),
			MetadataCID: raw.MetadataCid,
		}, nil

	case "TextUpdated":
		var raw struct {
			TextId         *big.Int
			NewMetadataCid string
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.TextUpdated{
			TextID:         raw.TextId.Uint64(),
			NewMetadataCID: raw.NewMetadataCid,
		}, nil

	case "TextDeleted":
		var raw struct {
			TextId *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.TextDeleted{TextID: raw.TextId.Uint64()}, nil

	case "MemberAdded":
		var raw struct {
			MemberId    *big.Int
			Addr        common.Address
			MetadataCid string
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.MemberAdded{
			MemberID:    raw.MemberId.Uint64(),
			Addr:        raw.Addr,
			MetadataCID: raw.MetadataCid,
		}, nil

	case "MemberUpdated":
		var raw struct {
			MemberId    *big.Int
			Addr        common.Address
			MetadataCid string
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.MemberUpdated{
			MemberID:    raw.MemberId.Uint64(),
			Addr:        raw.Addr,
			MetadataCID: raw.MetadataCid,
		}, nil

	case "MemberRemoved":
		var raw struct {
			MemberId *big.Int
		}
		if err := d.abi.UnpackIntoInterface(&raw, name, data); err != nil {
			return nil, err
		}
		return textdao.MemberRemoved{MemberID: raw.MemberId.Uint64()}, nil
	}

	return nil, errors.Errorf("no decoder for event %s", name)
}

func toUint64s(values []*big.Int) []uint64 {
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = v.Uint64()
	}
	return out
}
