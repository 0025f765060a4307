// Package esx keeps an Elasticsearch index of intakes for free-text search.
package esx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/lo"

	"jrm-intake-api/internal/config"
	"jrm-intake-api/internal/intake"
)

type Client = es8.Client

// Open builds a client from ES_ADDRS. It returns nil when ES is not
// configured.
func Open(cfg *config.Config) (*Client, func(), error) {
	if strings.TrimSpace(cfg.ES.Addrs) == "" {
		return nil, func() {}, nil
	}
	addrs := lo.FilterMap(strings.Split(cfg.ES.Addrs, ","), func(s string, _ int) (string, bool) {
		t := strings.TrimSpace(s)
		return t, t != ""
	})
	es, err := es8.NewClient(es8.Config{Addresses: addrs, Username: cfg.ES.Username, Password: cfg.ES.Password})
	if err != nil {
		return nil, func() {}, err
	}
	return es, func() {}, nil
}

// IntakeDoc is the indexed form of a jrm row. Values are rendered as text.
type IntakeDoc struct {
	IntakeID     string `json:"intake_id"`
	Name         string `json:"name,omitempty"`
	Comments     string `json:"comments,omitempty"`
	Tags         string `json:"tags,omitempty"`
	Status       string `json:"status,omitempty"`
	Attachment   string `json:"attachment,omitempty"`
	Date         string `json:"date,omitempty"`
	ApprovedDate string `json:"approved_date,omitempty"`
}

// DocFromRow converts a stored intake row.
func DocFromRow(row intake.Row) IntakeDoc {
	text := func(col string) string {
		if v := row[col]; v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}
	return IntakeDoc{
		IntakeID:     text(intake.ColIntakeID),
		Name:         text(intake.ColIntakeName),
		Comments:     text(intake.ColIntakeComments),
		Tags:         text(intake.ColIntakeTags),
		Status:       text(intake.ColStatus),
		Attachment:   text(intake.ColAttachment),
		Date:         text(intake.ColDate),
		ApprovedDate: text(intake.ColApprovedDate),
	}
}

var indexMapping = `{"mappings":{"properties":{
"intake_id":{"type":"keyword"},
"name":{"type":"text"},
"comments":{"type":"text"},
"tags":{"type":"text"},
"status":{"type":"text","fields":{"raw":{"type":"keyword"}}},
"attachment":{"type":"keyword","index":false},
"date":{"type":"keyword"},
"approved_date":{"type":"keyword"}}}}`

// EnsureIndex creates index with the intake mapping if it does not exist.
func EnsureIndex(ctx context.Context, es *Client, index string) error {
	if es == nil {
		return nil
	}
	res, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = es.Indices.Create(index,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmtError(res)
	}
	return nil
}

func IndexIntake(ctx context.Context, es *Client, index string, doc IntakeDoc) error {
	if es == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := es.Index(index, bytes.NewReader(b),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(doc.IntakeID),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmtError(res)
	}
	return nil
}

// DeleteIntake removes the document for id. A missing document is not an
// error.
func DeleteIntake(ctx context.Context, es *Client, index, id string) error {
	if es == nil {
		return nil
	}
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmtError(res)
	}
	return nil
}

// BulkIndex indexes docs in one request and returns how many succeeded.
func BulkIndex(ctx context.Context, es *Client, index string, docs []IntakeDoc) (int, error) {
	if es == nil || len(docs) == 0 {
		return 0, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		meta := map[string]any{"index": map[string]any{"_index": index, "_id": d.IntakeID}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		if err := enc.Encode(d); err != nil {
			return 0, err
		}
	}
	res, err := es.Bulk(&buf, es.Bulk.WithContext(ctx), es.Bulk.WithIndex(index))
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmtError(res)
	}
	var out struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	ok := lo.CountBy(out.Items, func(item map[string]struct {
		Status int `json:"status"`
	}) bool {
		return item["index"].Status < http.StatusBadRequest
	})
	if out.Errors {
		return ok, fmt.Errorf("bulk index: %d of %d documents failed", len(docs)-ok, len(docs))
	}
	return ok, nil
}

// Hit is one search match.
type Hit struct {
	ID     string    `json:"id"`
	Score  float64   `json:"score"`
	Source IntakeDoc `json:"source"`
}

// SearchResult is the search response returned to clients.
type SearchResult struct {
	Total int64 `json:"total"`
	Hits  []Hit `json:"hits"`
}

// SearchIntakes runs a multi_match query over name, comments, tags and
// status. A nil client yields an empty result.
func SearchIntakes(ctx context.Context, es *Client, index, query string, from, size int) (*SearchResult, error) {
	if es == nil {
		return &SearchResult{Hits: []Hit{}}, nil
	}
	q := map[string]any{"query": map[string]any{"multi_match": map[string]any{
		"query":  query,
		"fields": []string{"name^2", "comments", "tags", "status"},
	}}}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(bytes.NewReader(b)),
		es.Search.WithFrom(from),
		es.Search.WithSize(size),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmtError(res)
	}
	var raw struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string    `json:"_id"`
				Score  float64   `json:"_score"`
				Source IntakeDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := &SearchResult{Total: raw.Hits.Total.Value, Hits: make([]Hit, 0, len(raw.Hits.Hits))}
	for _, h := range raw.Hits.Hits {
		out.Hits = append(out.Hits, Hit{ID: h.ID, Score: h.Score, Source: h.Source})
	}
	return out, nil
}

func fmtError(res *esapi.Response) error { return fmt.Errorf("es error: %s", res.String()) }
