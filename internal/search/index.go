package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/twotimesgi/cardtrader-assignment/internal/models"
)

// Index maintains the product documents behind the quick-search endpoint.
// It is an acceleration structure only; the relational store stays the
// source of truth.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

type ProductDoc struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Model      string `json:"model"`
	Brand      string `json:"brand"`
	Price      string `json:"price"`
}

func DocFromProduct(p *models.Product) ProductDoc {
	return ProductDoc{
		ID:         p.ID.String(),
		CategoryID: p.CategoryID.String(),
		Model:      p.Model,
		Brand:      p.Brand,
		Price:      p.Price.String(),
	}
}

func (i *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := DocFromProduct(p)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("search: encode doc: %w", err)
	}

	res, err := i.ES.Index(
		i.Name,
		&buf,
		i.ES.Index.WithDocumentID(doc.ID),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index: %s", res.Status())
	}
	return nil
}

func (i *Index) DeleteProduct(ctx context.Context, id string) error {
	res, err := i.ES.Delete(i.Name, id, i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()
	// Deleting a document that was never indexed is not a failure.
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("search: delete: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi-field match over model and brand.
func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []ProductDoc, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"model^2", "brand"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ProductDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	docs := make([]ProductDoc, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		docs[n] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
