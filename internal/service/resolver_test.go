package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/infrastructure/repository"
	"github.com/textdao/indexer/internal/usecase"
)

type fakeFetcher struct {
	docs map[string][]byte
}

func (f *fakeFetcher) Fetch(ctx context.Context, cid string) ([]byte, error) {
	data, ok := f.docs[cid]
	if !ok {
		return nil, errors.Errorf("no document for %s", cid)
	}
	return data, nil
}

func newResolverFixture(t *testing.T, fetcher ContentFetcher, queueSize int) (*ResolverService, *repository.Memory) {
	t.Helper()
	mem := repository.NewMemory()
	resolver := NewResolverService(fetcher, queueSize, nil, nil)
	projection := usecase.NewProjection(usecase.Repositories{
		Proposals: mem.Proposals(),
		Headers:   mem.Headers(),
		Commands:  mem.Commands(),
		Actions:   mem.Actions(),
		Votes:     mem.Votes(),
		Snapshots: mem.Snapshots(),
		Texts:     mem.Texts(),
		Members:   mem.Members(),
		Config:    mem.Config(),
	}, resolver, nil)
	resolver.Attach(projection)
	return resolver, mem
}

func TestResolverAppliesFetchedDocument(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{
		"QmText7": []byte(`{"title":"hello","body":"world"}`),
	}}
	resolver, mem := newResolverFixture(t, fetcher, 4)
	ctx := context.Background()

	// Creating the text registers its cid with the resolver queue.
	projection := resolver.projection
	if err := projection.HandleTextCreated(ctx, textdao.TextCreated{
		TextID: 7, MetadataCID: "QmText7",
	}); err != nil {
		t.Fatalf("text create: %v", err)
	}

	select {
	case task := <-resolver.queue:
		resolver.resolve(ctx, task)
	default:
		t.Fatalf("registration not queued")
	}

	text, err := mem.Texts().Get(ctx, "7")
	if err != nil {
		t.Fatalf("text missing: %v", err)
	}
	if text.Title == nil || *text.Title != "hello" {
		t.Fatalf("content not applied: %+v", text)
	}
}

func TestResolverRegisterNeverBlocks(t *testing.T) {
	resolver, _ := newResolverFixture(t, &fakeFetcher{}, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			resolver.Register("QmOverflow", usecase.ContentText, "1")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Register must drop instead of blocking")
	}
}

func TestTypeMatches(t *testing.T) {
	if !typeMatches(nil, textdao.TypeVoted) {
		t.Fatalf("empty filter must pass everything")
	}
	if !typeMatches([]string{"Voted"}, textdao.TypeVoted) {
		t.Fatalf("matching filter must pass")
	}
	if typeMatches([]string{"Proposed"}, textdao.TypeVoted) {
		t.Fatalf("non-matching filter must block")
	}
}
