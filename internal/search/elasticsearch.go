package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"holidaze/internal/config"
	"holidaze/internal/filter"
	"holidaze/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// maxResults is the default index.max_result_window
const maxResults = 10000

// VenueIndex mirrors the venue directory in Elasticsearch so searches do not
// have to page through the whole upstream listing.
type VenueIndex struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// venueDocument keeps searchable fields next to the untouched venue
type venueDocument struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	City        string             `json:"city"`
	Country     string             `json:"country"`
	Tags        string             `json:"tags"`
	MaxGuests   int                `json:"maxGuests"`
	Wifi        bool               `json:"wifi"`
	Parking     bool               `json:"parking"`
	Breakfast   bool               `json:"breakfast"`
	Pets        bool               `json:"pets"`
	Created     time.Time          `json:"created"`
	SyncedAt    time.Time          `json:"syncedAt"`
	Venue       models.StoredVenue `json:"venue"`
}

func newDocument(v *models.Venue, syncedAt time.Time) venueDocument {
	return venueDocument{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		City:        v.Location.City,
		Country:     v.Location.Country,
		Tags:        strings.Join(v.Tags, " "),
		MaxGuests:   v.MaxGuests,
		Wifi:        v.Meta.Wifi,
		Parking:     v.Meta.Parking,
		Breakfast:   v.Meta.Breakfast,
		Pets:        v.Meta.Pets,
		Created:     v.Created,
		SyncedAt:    syncedAt,
		Venue:       models.StoredVenue(*v),
	}
}

func NewVenueIndex(cfg config.ElasticsearchConfig) (*VenueIndex, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	idx := &VenueIndex{
		client: es,
		config: cfg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := idx.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return idx, nil
}

func keywordField() map[string]any {
	return map[string]any{"type": "keyword", "normalizer": "lowercase_normalizer"}
}

func (c *VenueIndex) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	// keyword fields with a lowercase normalizer give case-insensitive substring
	// matching through wildcard queries
	mapping := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"normalizer": map[string]any{
					"lowercase_normalizer": map[string]any{
						"type":   "custom",
						"filter": []string{"lowercase"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":          map[string]any{"type": "keyword"},
				"name":        keywordField(),
				"description": keywordField(),
				"city":        keywordField(),
				"country":     keywordField(),
				"tags":        keywordField(),
				"maxGuests":   map[string]any{"type": "integer"},
				"wifi":        map[string]any{"type": "boolean"},
				"parking":     map[string]any{"type": "boolean"},
				"breakfast":   map[string]any{"type": "boolean"},
				"pets":        map[string]any{"type": "boolean"},
				"created":     map[string]any{"type": "date"},
				"syncedAt":    map[string]any{"type": "date"},
				"venue":       map[string]any{"type": "object", "enabled": false},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(body),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// Search returns the indexed venues matching c, newest first
func (c *VenueIndex) Search(ctx context.Context, criteria filter.Criteria) ([]models.Venue, error) {
	request := map[string]any{
		"query":   BuildQuery(criteria),
		"sort":    []map[string]any{{"created": map[string]any{"order": "desc"}}},
		"size":    maxResults,
		"_source": []string{"venue"},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source struct {
					Venue models.StoredVenue `json:"venue"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	venues := make([]models.Venue, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		venues[i] = models.Venue(hit.Source.Venue)
	}
	return venues, nil
}

// BuildQuery translates filter criteria into an Elasticsearch bool query with
// the same semantics as filter.Filter.
func BuildQuery(criteria filter.Criteria) map[string]any {
	minGuests := criteria.MinGuests
	if minGuests < 1 {
		minGuests = 1
	}

	filters := []map[string]any{
		{"range": map[string]any{"maxGuests": map[string]any{"gte": minGuests}}},
	}
	for field, required := range map[string]bool{
		"wifi":      criteria.Facilities.Wifi,
		"parking":   criteria.Facilities.Parking,
		"breakfast": criteria.Facilities.Breakfast,
		"pets":      criteria.Facilities.Pets,
	} {
		if required {
			filters = append(filters, map[string]any{"term": map[string]any{field: true}})
		}
	}

	boolQuery := map[string]any{"filter": filters}

	q := strings.ToLower(strings.TrimSpace(criteria.Query))
	if q != "" {
		pattern := "*" + escapeWildcard(q) + "*"
		should := make([]map[string]any, 0, len(textFields))
		for _, field := range textFields {
			should = append(should, map[string]any{
				"wildcard": map[string]any{field: map[string]any{"value": pattern, "case_insensitive": true}},
			})
		}
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}

	return map[string]any{"bool": boolQuery}
}

var textFields = []string{"name", "city", "country", "description", "tags"}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}

// Upsert indexes a single venue
func (c *VenueIndex) Upsert(ctx context.Context, venue *models.Venue) error {
	body, err := json.Marshal(newDocument(venue, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to marshal venue: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: venue.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index venue: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}
	return nil
}

// IndexVenues bulk-indexes venues stamped with syncedAt
func (c *VenueIndex) IndexVenues(ctx context.Context, venues []models.Venue, syncedAt time.Time) error {
	if len(venues) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range venues {
		meta := map[string]any{"index": map[string]any{"_index": c.config.Index, "_id": venues[i].ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to encode bulk meta: %w", err)
		}
		if err := enc.Encode(newDocument(&venues[i], syncedAt)); err != nil {
			return fmt.Errorf("failed to encode venue %s: %w", venues[i].ID, err)
		}
	}

	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to bulk index venues: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk indexing error: %s", res.String())
	}

	var response struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if response.Errors {
		return fmt.Errorf("bulk indexing reported item errors")
	}

	slog.Info("Indexed venues", "count", len(venues), "index", c.config.Index)
	return nil
}

// PruneBefore removes venues that were not part of the sync started at t
func (c *VenueIndex) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"range": map[string]any{"syncedAt": map[string]any{"lt": t.Format(time.RFC3339Nano)}},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal prune query: %w", err)
	}

	req := esapi.DeleteByQueryRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to prune venues: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("prune error: %s", res.String())
	}

	var response struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode prune response: %w", err)
	}
	return response.Deleted, nil
}

func (c *VenueIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: id,
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// Count returns the number of indexed venues
func (c *VenueIndex) Count(ctx context.Context) (int64, error) {
	req := esapi.CountRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var response struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return response.Count, nil
}

func (c *VenueIndex) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}
	return nil
}
