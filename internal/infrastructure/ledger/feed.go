// Package ledger tails the deliberation contract's event log. Events are
// decoded and handed to the sink strictly in (block, log index) order; the
// checkpoint only advances past a block once every event in it was applied.
package ledger

import (
	"context"
	"log/slog"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/textdao/indexer"
)

const maxBlockRange = 2000

// Client is the subset of ethclient.Client the feed needs.
type Client interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Checkpoint persists the highest fully applied block.
type Checkpoint interface {
	Load(ctx context.Context) (uint64, bool, error)
	Store(ctx context.Context, block uint64) error
}

// Sink applies one decoded event. A sink error stops the feed without
// advancing the checkpoint, so the failing event is seen again on restart.
type Sink func(ctx context.Context, ev textdao.Event) error

type Feed struct {
	client       Client
	decoder      *Decoder
	checkpoint   Checkpoint
	contract     common.Address
	startBlock   uint64
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewFeed(client Client, checkpoint Checkpoint, contract common.Address, startBlock uint64, pollInterval time.Duration, logger *slog.Logger) (*Feed, error) {
	decoder, err := NewDecoder()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		client:       client,
		decoder:      decoder,
		checkpoint:   checkpoint,
		contract:     contract,
		startBlock:   startBlock,
		pollInterval: pollInterval,
		logger:       logger,
	}, nil
}

// Run polls for new logs until ctx is cancelled or the sink fails.
func (f *Feed) Run(ctx context.Context, sink Sink) error {
	from := f.startBlock
	if checkpointed, found, err := f.checkpoint.Load(ctx); err != nil {
		return errors.Wrap(err, "load checkpoint")
	} else if found && checkpointed+1 > from {
		from = checkpointed + 1
	}

	f.logger.InfoContext(ctx, "feed starting",
		slog.String("contract", f.contract.Hex()),
		slog.Uint64("from", from),
	)

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		next, err := f.poll(ctx, sink, from)
		if err != nil {
			return err
		}
		from = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// poll catches up from `from` to the chain head and returns the next block
// to poll from.
func (f *Feed) poll(ctx context.Context, sink Sink, from uint64) (uint64, error) {
	head, err := f.client.BlockNumber(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "head lookup failed", slog.String("error", err.Error()))
		return from, nil
	}

	for from <= head {
		to := from + maxBlockRange - 1
		if to > head {
			to = head
		}

		if err := f.processRange(ctx, sink, from, to); err != nil {
			return from, err
		}
		from = to + 1
	}
	return from, nil
}

func (f *Feed) processRange(ctx context.Context, sink Sink, from, to uint64) error {
	logs, err := f.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{f.contract},
	})
	if err != nil {
		return errors.Wrapf(err, "filter logs %d-%d", from, to)
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	timestamps := make(map[uint64]time.Time)
	var (
		lastApplied uint64
		anyApplied  bool
	)

	for _, log := range logs {
		if log.Removed {
			continue
		}

		timestamp, err := f.blockTimestamp(ctx, log.BlockNumber, timestamps)
		if err != nil {
			return err
		}

		ev, ok, err := f.decoder.Decode(log, timestamp)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		// Checkpoint each block boundary once it is fully applied.
		if anyApplied && log.BlockNumber > lastApplied {
			if err := f.checkpoint.Store(ctx, lastApplied); err != nil {
				return errors.Wrap(err, "store checkpoint")
			}
		}

		if err := sink(ctx, ev); err != nil {
			return errors.Wrapf(err, "apply %s at block %d", ev.Type, ev.BlockNumber)
		}
		lastApplied = log.BlockNumber
		anyApplied = true
	}

	if err := f.checkpoint.Store(ctx, to); err != nil {
		return errors.Wrap(err, "store checkpoint")
	}
	return nil
}

func (f *Feed) blockTimestamp(ctx context.Context, block uint64, cache map[uint64]time.Time) (time.Time, error) {
	if t, ok := cache[block]; ok {
		return t, nil
	}
	header, err := f.client.HeaderByNumber(ctx, new(big.Int).SetUint64(block))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "header for block %d", block)
	}
	t := time.Unix(int64(header.Time), 0).UTC()
	cache[block] = t
	return t, nil
}
