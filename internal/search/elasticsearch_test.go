// internal/search/elasticsearch_test.go
package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffing-engine/internal/common/config"
	"staffing-engine/internal/common/database"
	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeTransport serves canned Elasticsearch responses and records every
// request so tests can assert on the index path and query body.
type fakeTransport struct {
	statusCode int
	response   string
	requests   []*http.Request
	bodies     []string
}

func (ft *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		ft.bodies = append(ft.bodies, string(data))
	}
	ft.requests = append(ft.requests, req)

	status := ft.statusCode
	if status == 0 {
		status = http.StatusOK
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(ft.response)),
	}, nil
}

func newTestClient(t *testing.T, ft *fakeTransport) *Client {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch.test:9200"},
		Transport: ft,
	})
	require.NoError(t, err)

	cfg := config.ElasticsearchConfig{
		ProfessionalIndex: "professionals",
		JobIndex:          "jobs",
	}
	return NewClient(&database.ElasticsearchClient{Client: es}, cfg, logger.NewTestLogger(t))
}

func hitsResponse(sources ...string) string {
	var hits []string
	for _, s := range sources {
		hits = append(hits, `{"_source":`+s+`}`)
	}
	return `{"hits":{"hits":[` + strings.Join(hits, ",") + `]}}`
}

// ==========================
// Query Builder Tests
// ==========================

func TestBuildPoolQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    PoolQuery
		status   string
		expected map[string]interface{}
	}{
		{
			name:   "status filter only",
			query:  PoolQuery{},
			status: "active",
			expected: map[string]interface{}{
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"filter": []interface{}{
							map[string]interface{}{"term": map[string]interface{}{"status": "active"}},
						},
					},
				},
			},
		},
		{
			name:   "specialty is lowercased",
			query:  PoolQuery{Specialty: "Registered_Nurse"},
			status: "open",
			expected: map[string]interface{}{
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"filter": []interface{}{
							map[string]interface{}{"term": map[string]interface{}{"status": "open"}},
							map[string]interface{}{"term": map[string]interface{}{"specialty": "registered_nurse"}},
						},
					},
				},
			},
		},
		{
			name:   "state is uppercased",
			query:  PoolQuery{State: "ca"},
			status: "active",
			expected: map[string]interface{}{
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"filter": []interface{}{
							map[string]interface{}{"term": map[string]interface{}{"status": "active"}},
							map[string]interface{}{"term": map[string]interface{}{"location.state": "CA"}},
						},
					},
				},
			},
		},
		{
			name:   "skills become a must terms clause",
			query:  PoolQuery{Skills: []string{"ICU", "ACLS"}},
			status: "active",
			expected: map[string]interface{}{
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"filter": []interface{}{
							map[string]interface{}{"term": map[string]interface{}{"status": "active"}},
						},
						"must": []interface{}{
							map[string]interface{}{"terms": map[string]interface{}{"skills": []string{"ICU", "ACLS"}}},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPoolQuery(tt.query, tt.status))
		})
	}
}

// ==========================
// Pool Search Tests
// ==========================

func TestClient_SearchProfessionals(t *testing.T) {
	ft := &fakeTransport{response: hitsResponse(
		`{"id":"prof-1","firstName":"Sarah","lastName":"Chen","specialty":"registered_nurse","status":"active"}`,
		`{"id":"prof-2","firstName":"Miguel","lastName":"Reyes","specialty":"registered_nurse","status":"active"}`,
	)}
	c := newTestClient(t, ft)

	pool, err := c.SearchProfessionals(context.Background(), PoolQuery{Specialty: "registered_nurse", Size: 50})
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "prof-1", pool[0].ID)
	assert.Equal(t, "Sarah", pool[0].FirstName)
	assert.Equal(t, "prof-2", pool[1].ID)

	require.Len(t, ft.requests, 1)
	req := ft.requests[0]
	assert.Equal(t, "/professionals/_search", req.URL.Path)
	assert.Equal(t, "50", req.URL.Query().Get("size"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(ft.bodies[0]), &body))
	assert.Contains(t, ft.bodies[0], `"status":"active"`)
	assert.Contains(t, ft.bodies[0], `"specialty":"registered_nurse"`)
}

func TestClient_SearchProfessionals_DefaultSize(t *testing.T) {
	ft := &fakeTransport{response: hitsResponse()}
	c := newTestClient(t, ft)

	pool, err := c.SearchProfessionals(context.Background(), PoolQuery{})
	require.NoError(t, err)
	assert.Empty(t, pool)

	require.Len(t, ft.requests, 1)
	assert.Equal(t, "100", ft.requests[0].URL.Query().Get("size"))
}

func TestClient_SearchOpenJobs(t *testing.T) {
	ft := &fakeTransport{response: hitsResponse(
		`{"id":"job-1","title":"ICU Registered Nurse","specialty":"registered_nurse","status":"open"}`,
	)}
	c := newTestClient(t, ft)

	pool, err := c.SearchOpenJobs(context.Background(), PoolQuery{Specialty: "registered_nurse"})
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "job-1", pool[0].ID)
	assert.Equal(t, "ICU Registered Nurse", pool[0].Title)

	require.Len(t, ft.requests, 1)
	assert.Equal(t, "/jobs/_search", ft.requests[0].URL.Path)
	assert.Contains(t, ft.bodies[0], `"status":"open"`)
}

func TestClient_Search_ServerErrorIsWrapped(t *testing.T) {
	ft := &fakeTransport{
		statusCode: http.StatusInternalServerError,
		response:   `{"error":{"type":"search_phase_execution_exception"}}`,
	}
	c := newTestClient(t, ft)

	pool, err := c.SearchProfessionals(context.Background(), PoolQuery{})
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Equal(t, engineerrors.ErrCodeSearchQueryFailed, engineerrors.CodeOf(err))
	assert.True(t, engineerrors.IsRetryable(err))
}

func TestClient_Search_MalformedHitIsAnError(t *testing.T) {
	ft := &fakeTransport{response: hitsResponse(`{"id":"job-1","salaryRange":"not-an-object"}`)}
	c := newTestClient(t, ft)

	pool, err := c.SearchOpenJobs(context.Background(), PoolQuery{})
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Equal(t, engineerrors.ErrCodeSearchQueryFailed, engineerrors.CodeOf(err))
}
