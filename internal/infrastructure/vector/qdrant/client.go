package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/kirillkom/panchayat-sahayika/internal/infrastructure/resilience"
)

// Client talks to the Qdrant REST API. It is shared by the scheme index and
// the document index.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, executor *resilience.Executor) *Client {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

// do sends one JSON request through the resilience executor. A nil out skips
// response decoding.
func (c *Client) do(ctx context.Context, operation, method, path string, payload any, out any) error {
	var body []byte
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		body = raw
	}

	err := c.executor.Execute(ctx, "qdrant."+operation, func(callCtx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("qdrant %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &StatusError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(raw),
			}
		}
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	}, classifyQdrantError)
	return wrapTemporaryIfNeeded("qdrant "+operation, err)
}

func (c *Client) createCollection(ctx context.Context, name string, dimension int) error {
	payload := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return c.do(ctx, "create_collection", http.MethodPut, "/collections/"+name, payload, nil)
}

func (c *Client) upsertPoints(ctx context.Context, collection string, points []point) error {
	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		payload := map[string]any{"points": points[start:end]}
		path := fmt.Sprintf("/collections/%s/points?wait=true", collection)
		if err := c.do(ctx, "upsert", http.MethodPut, path, payload, nil); err != nil {
			return err
		}
	}
	return nil
}

const upsertBatchSize = 256

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload any       `json:"payload"`
}

func matchFilter(conditions map[string]string) map[string]any {
	must := make([]map[string]any, 0, len(conditions))
	for _, key := range slices.Sorted(maps.Keys(conditions)) {
		value := conditions[key]
		if strings.TrimSpace(value) == "" {
			continue
		}
		must = append(must, map[string]any{
			"key":   key,
			"match": map[string]any{"value": value},
		})
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
