// internal/search/student_index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/common/metrics"
	"placement-tracker/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

const (
	defaultIndex   = "students"
	defaultTimeout = 5 * time.Second
	maxResults     = 100
)

// studentMapping keeps identifiers and email as keywords so they filter
// exactly; names are analysed text with a keyword sub-field.
var studentMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"user_id":         map[string]interface{}{"type": "keyword"},
			"full_name":       textWithKeyword(),
			"email":           map[string]interface{}{"type": "keyword"},
			"phone":           map[string]interface{}{"type": "keyword"},
			"gender":          map[string]interface{}{"type": "keyword"},
			"graduation_year": map[string]interface{}{"type": "integer"},
			"cgpa":            map[string]interface{}{"type": "scaled_float", "scaling_factor": 100},
			"college_id":      map[string]interface{}{"type": "keyword"},
			"college_name":    textWithKeyword(),
			"degree":          map[string]interface{}{"type": "keyword"},
			"branch":          map[string]interface{}{"type": "keyword"},
		},
	},
}

func textWithKeyword() map[string]interface{} {
	return map[string]interface{}{
		"type": "text",
		"fields": map[string]interface{}{
			"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256},
		},
	}
}

// StudentDocument is the denormalised student projection stored in the index.
type StudentDocument struct {
	UserID         string   `json:"user_id"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	GraduationYear *int     `json:"graduation_year,omitempty"`
	CGPA           *float64 `json:"cgpa,omitempty"`
	CollegeID      string   `json:"college_id,omitempty"`
	CollegeName    string   `json:"college_name,omitempty"`
	Degree         string   `json:"degree,omitempty"`
	Branch         string   `json:"branch,omitempty"`
}

type Hit struct {
	Score    float64         `json:"score"`
	Document StudentDocument `json:"document"`
}

// StudentIndex projects student rows into Elasticsearch for lookup by name,
// email or college. The database stays the source of truth.
type StudentIndex struct {
	client  *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  logger.Logger
}

func NewStudentIndex(client *elasticsearch.Client, cfg config.SearchConfig, log logger.Logger) *StudentIndex {
	index := cfg.StudentIndex
	if index == "" {
		index = defaultIndex
	}
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &StudentIndex{
		client:  client,
		index:   index,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"index": index}),
	}
}

// NewDocument builds the index document for a student and its college, which may be nil.
func NewDocument(st *models.Student, college *models.College) StudentDocument {
	doc := StudentDocument{
		UserID:         st.UserID.String(),
		FullName:       st.FullName,
		Email:          deref(st.Email),
		Phone:          deref(st.Phone),
		Gender:         deref(st.Gender),
		GraduationYear: st.GraduationYear,
	}
	if st.CGPA.Valid {
		f, _ := st.CGPA.Decimal.Float64()
		doc.CGPA = &f
	}
	if st.CollegeID != nil {
		doc.CollegeID = st.CollegeID.String()
	}
	if college == nil {
		college = st.College
	}
	if college != nil {
		doc.CollegeID = college.CollegeID.String()
		doc.CollegeName = college.Name
		doc.Degree = college.Degree
		doc.Branch = college.Branch
	}
	return doc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (i *StudentIndex) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return i.fail("exists", errors.NewElasticsearchConnectionFailedError(err))
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return i.fail("exists", errors.NewSearchQueryFailedError("exists", res.Status()))
	}

	body, _ := json.Marshal(studentMapping)
	res, err = i.client.Indices.Create(i.index,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return i.fail("create_index", errors.NewElasticsearchConnectionFailedError(err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return i.fail("create_index", errors.NewSearchQueryFailedError("create_index", readError(res)))
	}

	i.logger.Info("Created student index", nil)
	metrics.SearchRequestsTotal.WithLabelValues("create_index", metrics.StatusSuccess).Inc()
	return nil
}

// IndexStudent upserts the student's document, keyed by user_id.
func (i *StudentIndex) IndexStudent(ctx context.Context, st *models.Student, college *models.College) error {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	body, err := json.Marshal(NewDocument(st, college))
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: st.UserID.String(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return i.fail("index", errors.NewElasticsearchConnectionFailedError(err))
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return i.fail("index", errors.NewIndexNotFoundError(i.index))
		}
		return i.fail("index", errors.NewSearchQueryFailedError("index", readError(res)))
	}

	metrics.SearchRequestsTotal.WithLabelValues("index", metrics.StatusSuccess).Inc()
	return nil
}

// RemoveStudent deletes the student's document. A missing document is not an error.
func (i *StudentIndex) RemoveStudent(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req := esapi.DeleteRequest{Index: i.index, DocumentID: id.String()}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return i.fail("delete", errors.NewElasticsearchConnectionFailedError(err))
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return i.fail("delete", errors.NewSearchQueryFailedError("delete", readError(res)))
	}

	metrics.SearchRequestsTotal.WithLabelValues("delete", metrics.StatusSuccess).Inc()
	return nil
}

// Search runs a best-fields match of text over name, email and college name.
func (i *StudentIndex) Search(ctx context.Context, text string, limit int) ([]Hit, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	body, _ := json.Marshal(buildSearchQuery(text))
	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
		Size:  &limit,
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, i.fail("search", errors.NewElasticsearchConnectionFailedError(err))
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return nil, i.fail("search", errors.NewIndexNotFoundError(i.index))
		}
		return nil, i.fail("search", errors.NewSearchQueryFailedError("search", readError(res)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64         `json:"_score"`
				Source StudentDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, i.fail("search", errors.NewSearchQueryFailedError("search", fmt.Sprintf("decode response: %v", err)))
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{Score: h.Score, Document: h.Source})
	}

	metrics.SearchRequestsTotal.WithLabelValues("search", metrics.StatusSuccess).Inc()
	return hits, nil
}

func buildSearchQuery(text string) map[string]interface{} {
	if text == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"full_name.keyword": "asc"}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"full_name^3", "email^2", "college_name"},
				"type":   "best_fields",
			},
		},
	}
}

func (i *StudentIndex) fail(operation string, err *errors.StandardError) error {
	metrics.SearchRequestsTotal.WithLabelValues(operation, metrics.StatusError).Inc()
	i.logger.Error("Student index request failed", map[string]interface{}{
		"operation": operation,
		"error":     err,
	})
	return err
}

func readError(res *esapi.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	if len(raw) == 0 {
		return res.Status()
	}
	return fmt.Sprintf("%s: %s", res.Status(), raw)
}
