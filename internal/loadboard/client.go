// Package loadboard queries the Supabase-backed load board over its PostgREST
// interface and assembles the option records the options report is built
// from.
package loadboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const restPrefix = "/rest/v1/"

// Client is a thin PostgREST client. The zero HTTP client and clock are
// replaced with sane defaults; tests inject both.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Clock      func() time.Time
}

// NewClient returns a client for the given Supabase project URL and service
// key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// OptionsWithAvailableLoads returns every option (any status) attached to an
// available, pre-book load belonging to orgID, enriched with lane and carrier
// data.
func (c *Client) OptionsWithAvailableLoads(ctx context.Context, orgID string) ([]Option, error) {
	if c == nil || c.BaseURL == "" || c.APIKey == "" {
		return nil, errors.New("load board client is not configured")
	}
	if strings.TrimSpace(orgID) == "" {
		return nil, errors.New("org id is required")
	}

	loads, err := c.availableLoads(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(loads) == 0 {
		return nil, nil
	}

	locations, err := c.locationsFor(ctx, loads)
	if err != nil {
		return nil, err
	}

	now := c.now()
	prebook := make(map[string]Load)
	loadIDs := make([]string, 0, len(loads))
	for _, load := range loads {
		if IsPrebook(load.PickupDateClose, now) {
			prebook[load.ID] = load
			loadIDs = append(loadIDs, load.ID)
		}
	}
	if len(prebook) == 0 {
		return nil, nil
	}

	options, err := c.optionsFor(ctx, loadIDs)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, nil
	}

	carriers, err := c.carriersFor(ctx, options)
	if err != nil {
		return nil, err
	}

	enriched := make([]Option, 0, len(options))
	for _, opt := range options {
		load, ok := prebook[opt.LoadID]
		if !ok {
			continue
		}

		opt.Load = &LoadSummary{
			ID:              load.ID,
			Status:          load.Status,
			OrgID:           load.OrgID,
			CustomLoadID:    load.CustomLoadID,
			PickupDateClose: load.PickupDateClose,
			Origin:          laneStop(locations, load.OriginLocationID),
			Destination:     laneStop(locations, load.DestinationLocationID),
		}
		if carrier, ok := carriers[opt.CarrierID]; ok {
			opt.CarrierName = carrier.Name
			opt.CarrierMC = carrier.MCNumber
			opt.CarrierDOT = carrier.DOTNumber
		}
		enriched = append(enriched, opt)
	}

	return enriched, nil
}

func (c *Client) availableLoads(ctx context.Context, orgID string) ([]Load, error) {
	params := url.Values{}
	params.Set("select", "id,status,org_id,custom_load_id,pickup_date_close,origin_location_id,destination_location_id")
	params.Set("status", "eq.available")
	params.Set("org_id", "eq."+orgID)

	var loads []Load
	if err := c.get(ctx, "loads", params, &loads); err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	return loads, nil
}

func (c *Client) locationsFor(ctx context.Context, loads []Load) (map[string]Location, error) {
	ids := map[string]struct{}{}
	for _, load := range loads {
		if load.OriginLocationID != "" {
			ids[load.OriginLocationID] = struct{}{}
		}
		if load.DestinationLocationID != "" {
			ids[load.DestinationLocationID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return map[string]Location{}, nil
	}

	params := url.Values{}
	params.Set("select", "id,city,state")
	params.Set("id", inFilter(ids))

	var locations []Location
	if err := c.get(ctx, "locations", params, &locations); err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}

	byID := make(map[string]Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}
	return byID, nil
}

func (c *Client) optionsFor(ctx context.Context, loadIDs []string) ([]Option, error) {
	ids := map[string]struct{}{}
	for _, id := range loadIDs {
		ids[id] = struct{}{}
	}

	params := url.Values{}
	params.Set("select", "*")
	// No status filter: the report shows every option on an available load.
	params.Set("load_id", inFilter(ids))

	var options []Option
	if err := c.get(ctx, "options", params, &options); err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	return options, nil
}

func (c *Client) carriersFor(ctx context.Context, options []Option) (map[string]Carrier, error) {
	ids := map[string]struct{}{}
	for _, opt := range options {
		if opt.CarrierID != "" {
			ids[opt.CarrierID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return map[string]Carrier{}, nil
	}

	params := url.Values{}
	params.Set("select", "id,name,mc_number,dot_number")
	params.Set("id", inFilter(ids))

	var carriers []Carrier
	if err := c.get(ctx, "carriers", params, &carriers); err != nil {
		return nil, fmt.Errorf("query carriers: %w", err)
	}

	byID := make(map[string]Carrier, len(carriers))
	for _, carrier := range carriers {
		byID[carrier.ID] = carrier
	}
	return byID, nil
}

func (c *Client) get(ctx context.Context, table string, params url.Values, out any) error {
	endpoint := c.BaseURL + restPrefix + table + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", table, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// laneStop renders "City, ST" for a location id, degrading gracefully when
// either half is missing.
func laneStop(locations map[string]Location, id string) string {
	if id == "" {
		return ""
	}
	loc, ok := locations[id]
	if !ok {
		return ""
	}

	parts := make([]string, 0, 2)
	if strings.TrimSpace(loc.City) != "" {
		parts = append(parts, strings.TrimSpace(loc.City))
	}
	if strings.TrimSpace(loc.State) != "" {
		parts = append(parts, strings.TrimSpace(loc.State))
	}
	return strings.Join(parts, ", ")
}

// inFilter renders a PostgREST `in.(...)` filter with stable ordering.
func inFilter(ids map[string]struct{}) string {
	values := make([]string, 0, len(ids))
	for id := range ids {
		values = append(values, id)
	}
	sort.Strings(values)
	return "in.(" + strings.Join(values, ",") + ")"
}

func (c *Client) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
