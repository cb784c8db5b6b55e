package ergast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RaceDataSource = (*Client)(nil)

const (
	// DefaultBaseURL is the community-maintained Ergast mirror.
	DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRate is the proactive throttle in requests per second.
	DefaultRate = 4

	// pageSize is the limit requested when walking a listing. Mirrors may
	// cap it lower; the reported limit wins.
	pageSize = 100
)

// Config holds client settings. Zero values take the defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond caps the request rate; zero uses DefaultRate.
	RequestsPerSecond float64

	// HTTPClient replaces the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client reads records from the API.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewClient creates a client.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRate
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:     log.Named("ergast"),
	}
}

// Circuits walks every page of the circuit catalog.
func (c *Client) Circuits(ctx context.Context) ([]domain.Circuit, error) {
	var out []domain.Circuit
	err := c.walk(ctx, "/circuits.json", func(data *mrData) int {
		if data.CircuitTable == nil {
			return 0
		}
		for _, raw := range data.CircuitTable.Circuits {
			circuit, err := toCircuit(raw)
			if err != nil {
				c.skip("circuit", raw.CircuitID, err)
				continue
			}
			out = append(out, circuit)
		}
		return len(data.CircuitTable.Circuits)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Constructors returns the constructors entered in a season.
func (c *Client) Constructors(ctx context.Context, season int) ([]domain.Constructor, error) {
	var out []domain.Constructor
	err := c.walk(ctx, fmt.Sprintf("/%d/constructors.json", season), func(data *mrData) int {
		if data.ConstructorTable == nil {
			return 0
		}
		for _, raw := range data.ConstructorTable.Constructors {
			con, err := toConstructor(raw, season)
			if err != nil {
				c.skip("constructor", raw.ConstructorID, err)
				continue
			}
			out = append(out, con)
		}
		return len(data.ConstructorTable.Constructors)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Races returns the calendar of a season.
func (c *Client) Races(ctx context.Context, season int) ([]domain.Race, error) {
	var out []domain.Race
	err := c.walk(ctx, fmt.Sprintf("/%d.json", season), func(data *mrData) int {
		if data.RaceTable == nil {
			return 0
		}
		for _, raw := range data.RaceTable.Races {
			race, err := toRace(raw, season)
			if err != nil {
				c.skip("race", raw.RaceName, err)
				continue
			}
			out = append(out, race)
		}
		return len(data.RaceTable.Races)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Drivers returns the drivers entered in a season.
func (c *Client) Drivers(ctx context.Context, season int) ([]domain.Driver, error) {
	var out []domain.Driver
	err := c.walk(ctx, fmt.Sprintf("/%d/drivers.json", season), func(data *mrData) int {
		if data.DriverTable == nil {
			return 0
		}
		for _, raw := range data.DriverTable.Drivers {
			d, err := toDriver(raw, season)
			if err != nil {
				c.skip("driver", raw.DriverID, err)
				continue
			}
			out = append(out, d)
		}
		return len(data.DriverTable.Drivers)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walk requests path page by page until total is reached. visit consumes a
// page and returns how many rows it held. The offset advances by the limit
// the server reports, which may be smaller than the one requested.
func (c *Client) walk(ctx context.Context, path string, visit func(*mrData) int) error {
	for offset := 0; ; {
		data, err := c.get(ctx, path, page(pageSize, offset))
		if err != nil {
			return err
		}
		n := visit(data)
		if n == 0 {
			return nil
		}
		step := parseCount(data.Limit)
		if step <= 0 || step > pageSize {
			step = max(n, pageSize)
		}
		offset += step
		total := parseCount(data.Total)
		if total > 0 {
			if offset >= total {
				return nil
			}
		} else if n < step {
			return nil
		}
	}
}

// Results returns one page of a season's results. Each row takes its round
// and circuit from the race object it is nested in.
func (c *Client) Results(ctx context.Context, season, limit, offset int) (*driven.ResultsPage, error) {
	data, err := c.get(ctx, fmt.Sprintf("/%d/results.json", season), page(limit, offset))
	if err != nil {
		return nil, err
	}

	out := &driven.ResultsPage{
		Total:  parseCount(data.Total),
		Limit:  parseCount(data.Limit),
		Offset: parseCount(data.Offset),
	}
	if data.RaceTable == nil {
		return out, nil
	}
	out.Races = len(data.RaceTable.Races)
	for _, rawRace := range data.RaceTable.Races {
		race, err := toRace(rawRace, season)
		if err != nil {
			c.skip("race", rawRace.RaceName, err)
			continue
		}
		for _, raw := range rawRace.Results {
			res, err := toResult(raw, race)
			if err != nil {
				c.skip("result", raw.Driver.DriverID, err)
				continue
			}
			out.Results = append(out.Results, res)
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*mrData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("ergast: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("GET", zap.String("url", endpoint))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ergast: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ergast: decode %s: %w", path, err)
	}
	return &body.MRData, nil
}

func (c *Client) skip(kind, id string, err error) {
	c.log.Warn("skipping malformed record",
		zap.String("kind", kind),
		zap.String("id", id),
		zap.Error(err))
}

func page(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}
