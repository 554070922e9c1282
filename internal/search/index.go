// Package search indexes finalized submissions into Elasticsearch and
// serves the dashboard's keyword search. Indexing is best-effort: a
// submission is final once the store merge lands, searchability lags it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	commonerrors "founder-intake/internal/common/errors"
	"founder-intake/internal/common/logger"
	"founder-intake/internal/models"
)

// Index wraps the submissions index.
type Index struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewIndex(client *elasticsearch.Client, index string, log logger.Logger) *Index {
	return &Index{client: client, index: index, log: log}
}

type submissionDoc struct {
	CompanyName   string   `json:"companyName"`
	OperatingName string   `json:"operatingName"`
	Problem       string   `json:"problem"`
	Strengths     string   `json:"strengths"`
	ProductTags   []string `json:"productTags"`
	Stage         string   `json:"stage"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	SubmittedAt   string   `json:"submittedAt"`
}

// IndexSubmission upserts one submission document keyed by its store id.
func (i *Index) IndexSubmission(ctx context.Context, sub models.Submission) error {
	d := sub.Draft
	body, err := json.Marshal(submissionDoc{
		CompanyName:   d.CompanyName,
		OperatingName: d.OperatingName,
		Problem:       d.Problem,
		Strengths:     d.Strengths,
		ProductTags:   d.ProductTags,
		Stage:         d.Stage,
		City:          d.City,
		Country:       d.Country,
		SubmittedAt:   d.SubmittedAt,
	})
	if err != nil {
		return commonerrors.NewSearchIndexFailedError(err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(sub.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return commonerrors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return commonerrors.NewSearchIndexFailedError(
			fmt.Errorf("index request returned %s", res.Status()))
	}
	return nil
}

// Hit is one search result.
type Hit struct {
	ID          string
	CompanyName string
	Stage       string
	SubmittedAt string
}

// Search runs a keyword query over company name, problem, strengths and
// tags, newest submissions first.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 25
	}
	var body bytes.Buffer
	err := json.NewEncoder(&body).Encode(map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"companyName^3", "operatingName^2", "problem", "strengths", "productTags"},
			},
		},
		"sort": []map[string]interface{}{
			{"submittedAt": map[string]interface{}{"order": "desc", "unmapped_type": "keyword"}},
		},
	})
	if err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(strings.NewReader(body.String())),
	)
	if err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, commonerrors.NewSearchQueryFailedError(
			fmt.Errorf("search request returned %s", res.Status()))
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				ID     string        `json:"_id"`
				Source submissionDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(err)
	}

	hits := make([]Hit, 0, len(envelope.Hits.Hits))
	for _, h := range envelope.Hits.Hits {
		hits = append(hits, Hit{
			ID:          h.ID,
			CompanyName: h.Source.CompanyName,
			Stage:       h.Source.Stage,
			SubmittedAt: h.Source.SubmittedAt,
		})
	}
	return hits, nil
}
