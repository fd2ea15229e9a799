package repository

import (
	"context"
	"sort"
	"strconv"

	"github.com/textdao/indexer/internal/domain"
)

// Memory is a map-backed implementation of every repository port. Event
// processing is single-threaded, so no locking is needed; it backs the
// projection in tests and local replays.
type Memory struct {
	proposals   map[string]domain.Proposal
	headers     map[string]domain.Header
	commands    map[string]domain.Command
	actions     map[string]domain.Action
	votes       map[string]domain.Vote
	topHeaders  map[string]domain.TopHeader
	topCommands map[string]domain.TopCommand
	texts       map[string]domain.Text
	members     map[string]domain.Member
	config      *domain.DeliberationConfig
}

func NewMemory() *Memory {
	return &Memory{
		proposals:   make(map[string]domain.Proposal),
		headers:     make(map[string]domain.Header),
		commands:    make(map[string]domain.Command),
		actions:     make(map[string]domain.Action),
		votes:       make(map[string]domain.Vote),
		topHeaders:  make(map[string]domain.TopHeader),
		topCommands: make(map[string]domain.TopCommand),
		texts:       make(map[string]domain.Text),
		members:     make(map[string]domain.Member),
	}
}

// Proposals / Headers / Commands / Actions / Votes / Snapshots / Texts /
// Members / Config views over the same Memory instance.

type MemoryProposals struct{ m *Memory }
type MemoryHeaders struct{ m *Memory }
type MemoryCommands struct{ m *Memory }
type MemoryActions struct{ m *Memory }
type MemoryVotes struct{ m *Memory }
type MemorySnapshots struct{ m *Memory }
type MemoryTexts struct{ m *Memory }
type MemoryMembers struct{ m *Memory }
type MemoryConfig struct{ m *Memory }

func (m *Memory) Proposals() *MemoryProposals { return &MemoryProposals{m} }
func (m *Memory) Headers() *MemoryHeaders     { return &MemoryHeaders{m} }
func (m *Memory) Commands() *MemoryCommands   { return &MemoryCommands{m} }
func (m *Memory) Actions() *MemoryActions     { return &MemoryActions{m} }
func (m *Memory) Votes() *MemoryVotes         { return &MemoryVotes{m} }
func (m *Memory) Snapshots() *MemorySnapshots { return &MemorySnapshots{m} }
func (m *Memory) Texts() *MemoryTexts         { return &MemoryTexts{m} }
func (m *Memory) Members() *MemoryMembers     { return &MemoryMembers{m} }
func (m *Memory) Config() *MemoryConfig       { return &MemoryConfig{m} }

func (r *MemoryProposals) Get(ctx context.Context, id string) (domain.Proposal, error) {
	proposal, ok := r.m.proposals[id]
	if !ok {
		return domain.Proposal{}, domain.NotFoundError{Resource: "proposal"}
	}
	return proposal, nil
}

func (r *MemoryProposals) Put(ctx context.Context, proposal domain.Proposal) error {
	r.m.proposals[proposal.ID] = proposal
	return nil
}

func (r *MemoryProposals) List(ctx context.Context) ([]domain.Proposal, error) {
	out := make([]domain.Proposal, 0, len(r.m.proposals))
	for _, proposal := range r.m.proposals {
		out = append(out, proposal)
	}
	sort.Slice(out, func(i, j int) bool { return numericLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *MemoryHeaders) Create(ctx context.Context, header domain.Header) error {
	if _, ok := r.m.headers[header.ID]; ok {
		return domain.AlreadyExistsError{Resource: "header"}
	}
	r.m.headers[header.ID] = header
	return nil
}

func (r *MemoryHeaders) Get(ctx context.Context, id string) (domain.Header, error) {
	header, ok := r.m.headers[id]
	if !ok {
		return domain.Header{}, domain.NotFoundError{Resource: "header"}
	}
	return header, nil
}

func (r *MemoryHeaders) PutContent(ctx context.Context, id, cid string, title, body *string) (bool, error) {
	header, ok := r.m.headers[id]
	if !ok || header.MetadataCID != cid {
		return false, nil
	}
	header.Title = title
	header.Body = body
	r.m.headers[id] = header
	return true, nil
}

func (r *MemoryHeaders) ListByProposal(ctx context.Context, proposalID string) ([]domain.Header, error) {
	var out []domain.Header
	for _, header := range r.m.headers {
		if header.ProposalID == proposalID {
			out = append(out, header)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HeaderID < out[j].HeaderID })
	return out, nil
}

func (r *MemoryCommands) Create(ctx context.Context, command domain.Command) error {
	if _, ok := r.m.commands[command.ID]; ok {
		return domain.AlreadyExistsError{Resource: "command"}
	}
	r.m.commands[command.ID] = command
	return nil
}

func (r *MemoryCommands) Get(ctx context.Context, id string) (domain.Command, error) {
	command, ok := r.m.commands[id]
	if !ok {
		return domain.Command{}, domain.NotFoundError{Resource: "command"}
	}
	return command, nil
}

func (r *MemoryCommands) ListByProposal(ctx context.Context, proposalID string) ([]domain.Command, error) {
	var out []domain.Command
	for _, command := range r.m.commands {
		if command.ProposalID == proposalID {
			out = append(out, command)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommandID < out[j].CommandID })
	return out, nil
}

func (r *MemoryActions) Create(ctx context.Context, action domain.Action) error {
	if _, ok := r.m.actions[action.ID]; ok {
		return domain.AlreadyExistsError{Resource: "action"}
	}
	r.m.actions[action.ID] = action
	return nil
}

func (r *MemoryActions) Get(ctx context.Context, id string) (domain.Action, error) {
	action, ok := r.m.actions[id]
	if !ok {
		return domain.Action{}, domain.NotFoundError{Resource: "action"}
	}
	return action, nil
}

func (r *MemoryActions) Put(ctx context.Context, action domain.Action) error {
	r.m.actions[action.ID] = action
	return nil
}

func (r *MemoryActions) ListByCommand(ctx context.Context, commandKey string) ([]domain.Action, error) {
	var out []domain.Action
	for _, action := range r.m.actions {
		if action.CommandKey == commandKey {
			out = append(out, action)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActionIndex < out[j].ActionIndex })
	return out, nil
}

func (r *MemoryVotes) Get(ctx context.Context, id string) (domain.Vote, error) {
	vote, ok := r.m.votes[id]
	if !ok {
		return domain.Vote{}, domain.NotFoundError{Resource: "vote"}
	}
	return vote, nil
}

func (r *MemoryVotes) Put(ctx context.Context, vote domain.Vote) error {
	r.m.votes[vote.ID] = vote
	return nil
}

func (r *MemoryVotes) ListByProposal(ctx context.Context, proposalID string) ([]domain.Vote, error) {
	var out []domain.Vote
	for _, vote := range r.m.votes {
		if vote.ProposalID == proposalID {
			out = append(out, vote)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rep < out[j].Rep })
	return out, nil
}

func (r *MemorySnapshots) PutTopHeader(ctx context.Context, slot domain.TopHeader) error {
	r.m.topHeaders[slot.ID] = slot
	return nil
}

func (r *MemorySnapshots) PutTopCommand(ctx context.Context, slot domain.TopCommand) error {
	r.m.topCommands[slot.ID] = slot
	return nil
}

func (r *MemorySnapshots) ListTopHeaders(ctx context.Context, proposalID string, epoch uint64) ([]domain.TopHeader, error) {
	var out []domain.TopHeader
	for _, slot := range r.m.topHeaders {
		if slot.ProposalID == proposalID && slot.Epoch == epoch {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (r *MemorySnapshots) ListTopCommands(ctx context.Context, proposalID string, epoch uint64) ([]domain.TopCommand, error) {
	var out []domain.TopCommand
	for _, slot := range r.m.topCommands {
		if slot.ProposalID == proposalID && slot.Epoch == epoch {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (r *MemoryTexts) Create(ctx context.Context, text domain.Text) error {
	if _, ok := r.m.texts[text.ID]; ok {
		return domain.AlreadyExistsError{Resource: "text"}
	}
	r.m.texts[text.ID] = text
	return nil
}

func (r *MemoryTexts) Get(ctx context.Context, id string) (domain.Text, error) {
	text, ok := r.m.texts[id]
	if !ok {
		return domain.Text{}, domain.NotFoundError{Resource: "text"}
	}
	return text, nil
}

func (r *MemoryTexts) Put(ctx context.Context, text domain.Text) error {
	r.m.texts[text.ID] = text
	return nil
}

func (r *MemoryTexts) PutContent(ctx context.Context, id, cid string, title, body *string) (bool, error) {
	text, ok := r.m.texts[id]
	if !ok || text.MetadataCID != cid {
		return false, nil
	}
	text.Title = title
	text.Body = body
	r.m.texts[id] = text
	return true, nil
}

func (r *MemoryTexts) Delete(ctx context.Context, id string) error {
	if _, ok := r.m.texts[id]; !ok {
		return domain.NotFoundError{Resource: "text"}
	}
	delete(r.m.texts, id)
	return nil
}

func (r *MemoryTexts) List(ctx context.Context) ([]domain.Text, error) {
	out := make([]domain.Text, 0, len(r.m.texts))
	for _, text := range r.m.texts {
		out = append(out, text)
	}
	sort.Slice(out, func(i, j int) bool { return numericLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *MemoryMembers) Create(ctx context.Context, member domain.Member) error {
	if _, ok := r.m.members[member.ID]; ok {
		return domain.AlreadyExistsError{Resource: "member"}
	}
	r.m.members[member.ID] = member
	return nil
}

func (r *MemoryMembers) Get(ctx context.Context, id string) (domain.Member, error) {
	member, ok := r.m.members[id]
	if !ok {
		return domain.Member{}, domain.NotFoundError{Resource: "member"}
	}
	return member, nil
}

func (r *MemoryMembers) Put(ctx context.Context, member domain.Member) error {
	r.m.members[member.ID] = member
	return nil
}

func (r *MemoryMembers) PutContent(ctx context.Context, id, cid string, name, image, bio *string) (bool, error) {
	member, ok := r.m.members[id]
	if !ok || member.MetadataCID != cid {
		return false, nil
	}
	member.Name = name
	member.Image = image
	member.Bio = bio
	r.m.members[id] = member
	return true, nil
}

func (r *MemoryMembers) Delete(ctx context.Context, id string) error {
	if _, ok := r.m.members[id]; !ok {
		return domain.NotFoundError{Resource: "member"}
	}
	delete(r.m.members, id)
	return nil
}

func (r *MemoryMembers) List(ctx context.Context) ([]domain.Member, error) {
	out := make([]domain.Member, 0, len(r.m.members))
	for _, member := range r.m.members {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool { return numericLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *MemoryConfig) Get(ctx context.Context) (domain.DeliberationConfig, error) {
	if r.m.config == nil {
		return domain.DeliberationConfig{}, domain.NotFoundError{Resource: "deliberation config"}
	}
	return *r.m.config, nil
}

func (r *MemoryConfig) Put(ctx context.Context, config domain.DeliberationConfig) error {
	r.m.config = &config
	return nil
}

func numericLess(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
