package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RemoteSource fetches project metadata from a "get-project-by-id" API.
type RemoteSource struct {
	baseURL string
	ids     map[string]string // local id -> remote id
	client  *retryablehttp.Client
	logger  port.Logger
}

// NewRemoteSource creates a RemoteSource. ids maps the catalog id ("ETH")
// to the remote project id ("ethereum").
func NewRemoteSource(baseURL string, ids map[string]string, maxRetries int, timeout time.Duration, l port.Logger) *RemoteSource {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = l
	return &RemoteSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		ids:     ids,
		client:  rc,
		logger:  l,
	}
}

// flexInt accepts a JSON number or a numeric string.
type flexInt struct {
	v  int32
	ok bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid decimals %s: %w", string(b), err)
	}
	f.v, f.ok = int32(n), true
	return nil
}

type remoteContract struct {
	Symbol  string  `json:"symbol"`
	Token   string  `json:"token"`
	Address string  `json:"address"`
	Decimal flexInt `json:"decimal"`
}

type remoteProject struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Symbol    string                    `json:"symbol"`
	Decimal   flexInt                   `json:"decimal"`
	Contracts map[string]remoteContract `json:"contracts"`
}

// FetchProjects fetches every configured id. Ids that fail are logged and skipped.
func (s *RemoteSource) FetchProjects(ctx context.Context) ([]entity.Project, error) {
	localIDs := make([]string, 0, len(s.ids))
	for id := range s.ids {
		localIDs = append(localIDs, id)
	}
	sort.Strings(localIDs)

	projects := make([]entity.Project, 0, len(localIDs))
	var lastErr error
	for _, id := range localIDs {
		p, err := s.fetch(ctx, id, s.ids[id])
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("Failed to fetch project", "id", id, "remoteID", s.ids[id], "error", err)
			lastErr = err
			continue
		}
		projects = append(projects, p)
	}
	if len(projects) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return projects, nil
}

func (s *RemoteSource) fetch(ctx context.Context, localID, remoteID string) (entity.Project, error) {
	endpoint := fmt.Sprintf("%s/get-project-by-id?id=%s", s.baseURL, url.QueryEscape(remoteID))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entity.Project{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return entity.Project{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.Project{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.Project{}, fmt.Errorf("failed to read response: %w", err)
	}

	var rp remoteProject
	if err := json.Unmarshal(body, &rp); err != nil {
		return entity.Project{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return rp.toProject(localID), nil
}

func (rp remoteProject) toProject(localID string) entity.Project {
	p := entity.Project{
		ID:        localID,
		Name:      rp.Name,
		Symbol:    rp.Symbol,
		Decimal:   18,
		Contracts: make(map[string]entity.ContractEntry, len(rp.Contracts)),
	}
	if p.Symbol == "" {
		p.Symbol = localID
	}
	if rp.Decimal.ok {
		p.Decimal = rp.Decimal.v
	}
	for chain, rc := range rp.Contracts {
		entry := entity.ContractEntry{Symbol: rc.Symbol, Token: rc.Token, Address: rc.Address}
		if entry.ContractAddress() == "" {
			continue
		}
		if rc.Decimal.ok {
			d := rc.Decimal.v
			entry.Decimal = &d
		}
		p.Contracts[strings.ToUpper(chain)] = entry
	}
	return p
}
