// Package gateway fetches off-chain metadata documents referenced by
// content ids.
package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

const (
	defaultTimeout = 10 * time.Second
	maxDocumentLen = 1 << 20
)

// ContentGateway resolves content ids through an IPFS HTTP gateway.
// Documents are content addressed, so successful fetches cache well.
type ContentGateway struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
}

func NewContentGateway(baseURL string) *ContentGateway {
	return &ContentGateway{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(30*time.Minute, 45*time.Minute),
		baseURL: baseURL,
	}
}

// Fetch returns the document bytes for a content id.
func (g *ContentGateway) Fetch(ctx context.Context, cid string) ([]byte, error) {
	if cached, found := g.cache.Get(cid); found {
		return cached.([]byte), nil
	}

	target, err := url.JoinPath(g.baseURL, cid)
	if err != nil {
		return nil, errors.Wrap(err, "build gateway url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", cid)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: unexpected status code %d", cid, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentLen))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", cid)
	}

	g.cache.Set(cid, data, cache.DefaultExpiration)
	return data, nil
}
