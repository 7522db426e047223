// Package search is the narrow HTTP collaborator interface to the incident
// search/store backend: ES|QL query strings in, typed rows out, plus the
// index-mapping and bulk-load operations used by the ingest tooling.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/derrick/internal/incident"
)

const httpTimeout = 30 * time.Second

// Querier is the row-oriented query interface the triage core and analytics
// consume. The query language and storage schema belong to the backend.
type Querier interface {
	Query(ctx context.Context, esql string) (*Rows, error)
}

// Column describes one column of an ES|QL result.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Rows is a row-oriented, column-typed tabular result.
type Rows struct {
	Columns []Column            `json:"columns"`
	Values  [][]json.RawMessage `json:"values"`
}

// Maps returns the rows reshaped as column-name keyed maps.
func (r *Rows) Maps() []map[string]json.RawMessage {
	out := make([]map[string]json.RawMessage, 0, len(r.Values))
	for _, row := range r.Values {
		m := make(map[string]json.RawMessage, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				m[col.Name] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// Client talks to the search backend over HTTP.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// New creates a search client for the given endpoint.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
	}
}

// Query executes an ES|QL query and returns the tabular result.
func (c *Client) Query(ctx context.Context, esql string) (*Rows, error) {
	payload, err := json.Marshal(map[string]string{"query": esql})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/_query", payload, "application/json")
	if err != nil {
		return nil, err
	}

	var rows Rows
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &rows, nil
}

// incidentMapping mirrors the incident.Record document shape.
const incidentMapping = `{
  "mappings": {
    "properties": {
      "incident_id": {"type": "keyword"},
      "timestamp": {"type": "date"},
      "location": {
        "properties": {
          "field_name": {"type": "keyword"},
          "well_id": {"type": "keyword"},
          "coordinates": {"type": "geo_point"}
        }
      },
      "incident_type": {"type": "keyword"},
      "severity": {"type": "keyword"},
      "severity_score": {"type": "float"},
      "description": {"type": "text", "analyzer": "english"},
      "equipment_involved": {"type": "keyword"},
      "personnel_count": {"type": "integer"},
      "injuries": {"type": "integer"},
      "fatalities": {"type": "integer"},
      "financial_impact": {"type": "float"},
      "root_cause": {"type": "text"},
      "corrective_actions": {"type": "text"},
      "status": {"type": "keyword"},
      "assigned_team": {"type": "keyword"},
      "resolution_time_hours": {"type": "float"},
      "tags": {"type": "keyword"}
    }
  },
  "settings": {"number_of_shards": 1, "number_of_replicas": 0}
}`

// EnsureIncidentIndex creates the incident index with its mapping. Creating
// an index that already exists is not an error.
func (c *Client) EnsureIncidentIndex(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodHead, "/"+name, nil, "")
	if err == nil {
		return nil
	}

	if _, err := c.do(ctx, http.MethodPut, "/"+name, []byte(incidentMapping), "application/json"); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// BulkIndex loads incident records into the named index via the bulk API and
// returns how many actions were submitted.
func (c *Client) BulkIndex(ctx context.Context, name string, records []incident.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		action := map[string]map[string]string{
			"index": {"_index": name, "_id": rec.IncidentID},
		}
		if err := enc.Encode(action); err != nil {
			return 0, fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(rec); err != nil {
			return 0, fmt.Errorf("encode record %s: %w", rec.IncidentID, err)
		}
	}

	body, err := c.do(ctx, http.MethodPost, "/_bulk", buf.Bytes(), "application/x-ndjson")
	if err != nil {
		return 0, err
	}

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("unmarshal bulk response: %w", err)
	}
	if out.Errors {
		return 0, fmt.Errorf("bulk load reported item errors")
	}
	return len(records), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10 MB
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search backend returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
