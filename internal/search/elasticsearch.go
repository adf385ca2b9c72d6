// internal/search/elasticsearch.go
package search

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"staffing-engine/internal/common/config"
	"staffing-engine/internal/common/database"
	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/common/logger"
	"staffing-engine/internal/models"
)

// Client retrieves candidate and job pools from Elasticsearch. Search only
// narrows the pool; scoring, ranking and status filtering stay in the
// engine, which treats the Postgres store as the system of record.
type Client struct {
	es     *database.ElasticsearchClient
	cfg    config.ElasticsearchConfig
	logger logger.Logger
}

func NewClient(es *database.ElasticsearchClient, cfg config.ElasticsearchConfig, log logger.Logger) *Client {
	return &Client{
		es:     es,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

// PoolQuery narrows a pool lookup.
type PoolQuery struct {
	Specialty string
	State     string
	Skills    []string
	Size      int
}

// SearchProfessionals returns active professionals matching the query.
func (c *Client) SearchProfessionals(ctx context.Context, q PoolQuery) ([]*models.HealthcareProfessional, error) {
	body := buildPoolQuery(q, string(models.ProfessionalActive))

	var pool []*models.HealthcareProfessional
	if err := c.search(ctx, c.cfg.ProfessionalIndex, body, q.Size, func(source json.RawMessage) error {
		var p models.HealthcareProfessional
		if err := json.Unmarshal(source, &p); err != nil {
			return err
		}
		pool = append(pool, &p)
		return nil
	}); err != nil {
		return nil, engineerrors.NewSearchQueryFailedError("professionals", err)
	}
	return pool, nil
}

// SearchOpenJobs returns open jobs matching the query.
func (c *Client) SearchOpenJobs(ctx context.Context, q PoolQuery) ([]*models.JobOpportunity, error) {
	body := buildPoolQuery(q, string(models.JobOpen))

	var pool []*models.JobOpportunity
	if err := c.search(ctx, c.cfg.JobIndex, body, q.Size, func(source json.RawMessage) error {
		var job models.JobOpportunity
		if err := json.Unmarshal(source, &job); err != nil {
			return err
		}
		pool = append(pool, &job)
		return nil
	}); err != nil {
		return nil, engineerrors.NewSearchQueryFailedError("jobs", err)
	}
	return pool, nil
}

// buildPoolQuery assembles the bool query for either index.
func buildPoolQuery(q PoolQuery, status string) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"status": status},
		},
	}

	if q.Specialty != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"specialty": strings.ToLower(q.Specialty)},
		})
	}
	if q.State != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"location.state": strings.ToUpper(q.State)},
		})
	}
	if len(q.Skills) > 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"terms": map[string]interface{}{"skills": q.Skills},
		})
	}

	boolQuery := map[string]interface{}{"filter": filterClauses}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) search(ctx context.Context, index string, body map[string]interface{}, size int, each func(json.RawMessage) error) error {
	if size <= 0 {
		size = 100
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(payload)),
		Size:  &size,
	}

	res, err := req.Do(ctx, c.es.Client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return &esError{status: res.Status()}
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	for _, hit := range parsed.Hits.Hits {
		if err := each(hit.Source); err != nil {
			return err
		}
	}
	return nil
}

type esError struct {
	status string
}

func (e *esError) Error() string {
	return "elasticsearch: " + e.status
}
