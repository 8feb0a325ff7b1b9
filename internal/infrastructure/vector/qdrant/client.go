// Package qdrant implements the retrieval index port over the Qdrant
// HTTP API. Entries are stored one point per knowledge entry with the
// question and answer text kept in the payload.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mkorolev/insight-router/internal/core/domain"
)

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) IndexEntry(ctx context.Context, entry domain.KnowledgeEntry, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty entry vector")
	}
	if err := c.ensureCollection(ctx, len(vector)); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	reqBody := map[string]any{
		"points": []point{{
			ID:     entry.ID,
			Vector: vector,
			Payload: map[string]any{
				"entry_id": entry.ID,
				"question": entry.Question,
				"answer":   entry.Answer,
			},
		}},
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPut, url, reqBody, nil, "upsert"); err != nil {
		return err
	}
	return nil
}

func (c *Client) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedEntry, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}

	var searchResp struct {
		Result []scoredPoint `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}
	return toEntries(searchResp.Result), nil
}

func (c *Client) SearchKeywords(ctx context.Context, keywords []string, limit int) ([]domain.RetrievedEntry, error) {
	// Any keyword hitting either the question or the answer text
	// qualifies the point.
	should := make([]map[string]any, 0, len(keywords)*2)
	for _, kw := range keywords {
		for _, field := range []string{"question", "answer"} {
			should = append(should, map[string]any{
				"key":   field,
				"match": map[string]any{"text": kw},
			})
		}
	}

	reqBody := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"filter":       map[string]any{"should": should},
	}
	return c.scroll(ctx, reqBody)
}

func (c *Client) FetchAll(ctx context.Context, limit int) ([]domain.RetrievedEntry, error) {
	reqBody := map[string]any{
		"limit":        limit,
		"with_payload": true,
	}
	return c.scroll(ctx, reqBody)
}

func (c *Client) scroll(ctx context.Context, reqBody map[string]any) ([]domain.RetrievedEntry, error) {
	var scrollResp struct {
		Result struct {
			Points []scoredPoint `json:"points"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/scroll", c.baseURL, c.collection)
	if err := c.do(ctx, http.MethodPost, url, reqBody, &scrollResp, "scroll"); err != nil {
		return nil, err
	}
	return toEntries(scrollResp.Result.Points), nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err := c.do(ctx, http.MethodPut, url, reqBody, nil, "ensure collection")
	if err != nil {
		// 409 means the collection already exists.
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict {
			c.markCollectionEnsured(vectorSize)
			return nil
		}
		return err
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			Operation: operation,
			Code:      resp.StatusCode,
			Status:    resp.Status,
			Body:      strings.TrimSpace(string(raw)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
	}
	return nil
}

type statusError struct {
	Operation string
	Code      int
	Status    string
	Body      string
}

func (e *statusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("qdrant %s status: %s: %s", e.Operation, e.Status, e.Body)
	}
	return fmt.Sprintf("qdrant %s status: %s", e.Operation, e.Status)
}

type scoredPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func toEntries(points []scoredPoint) []domain.RetrievedEntry {
	out := make([]domain.RetrievedEntry, 0, len(points))
	for _, p := range points {
		id := getStringPayload(p.Payload, "entry_id")
		if id == "" {
			id = p.ID
		}
		out = append(out, domain.RetrievedEntry{
			ID:       id,
			Question: getStringPayload(p.Payload, "question"),
			Answer:   getStringPayload(p.Payload, "answer"),
			Score:    p.Score,
		})
	}
	return out
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
