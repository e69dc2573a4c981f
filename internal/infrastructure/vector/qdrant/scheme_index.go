package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// CreateCollection creates a fresh physical collection for a rebuild.
func (c *Client) CreateCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "qdrant create collection", fmt.Errorf("dimension must be positive, got %d", dimension))
	}
	return c.createCollection(ctx, name, dimension)
}

func (c *Client) UpsertSchemes(ctx context.Context, collection string, points []domain.SchemePoint) error {
	if len(points) == 0 {
		return nil
	}
	out := make([]point, 0, len(points))
	for _, p := range points {
		out = append(out, point{ID: p.ID, Vector: p.Vector, Payload: p.Scheme})
	}
	return c.upsertPoints(ctx, collection, out)
}

// SwapAlias atomically points alias at collection and returns the collection
// the alias pointed at before, or "" on the first build.
func (c *Client) SwapAlias(ctx context.Context, alias, collection string) (string, error) {
	previous, err := c.aliasTarget(ctx, alias)
	if err != nil {
		return "", err
	}

	actions := make([]map[string]any, 0, 2)
	if previous != "" {
		actions = append(actions, map[string]any{
			"delete_alias": map[string]any{"alias_name": alias},
		})
	}
	actions = append(actions, map[string]any{
		"create_alias": map[string]any{
			"collection_name": collection,
			"alias_name":      alias,
		},
	})
	if err := c.do(ctx, "swap_alias", http.MethodPost, "/collections/aliases", map[string]any{"actions": actions}, nil); err != nil {
		return "", err
	}
	return previous, nil
}

func (c *Client) aliasTarget(ctx context.Context, alias string) (string, error) {
	var resp struct {
		Result struct {
			Aliases []struct {
				AliasName      string `json:"alias_name"`
				CollectionName string `json:"collection_name"`
			} `json:"aliases"`
		} `json:"result"`
	}
	if err := c.do(ctx, "list_aliases", http.MethodGet, "/aliases", nil, &resp); err != nil {
		return "", err
	}
	for _, a := range resp.Result.Aliases {
		if a.AliasName == alias {
			return a.CollectionName, nil
		}
	}
	return "", nil
}

// DropCollection deletes a collection; a missing collection is not an error.
func (c *Client) DropCollection(ctx context.Context, name string) error {
	err := c.do(ctx, "drop_collection", http.MethodDelete, "/collections/"+name, nil, nil)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// SearchSchemes runs a vector search over alias. An alias that was never
// built yields no hits.
func (c *Client) SearchSchemes(
	ctx context.Context,
	alias string,
	queryVector []float32,
	limit int,
	filter domain.SchemeFilter,
) ([]domain.SchemeHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if f := matchFilter(map[string]string{
		"category":   filter.Category,
		"department": filter.Department,
		"type":       filter.Type,
	}); f != nil {
		reqBody["filter"] = f
	}

	var resp struct {
		Result []struct {
			ID      any           `json:"id"`
			Score   float64       `json:"score"`
			Payload domain.Scheme `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", alias)
	if err := c.do(ctx, "search_schemes", http.MethodPost, path, reqBody, &resp); err != nil {
		if isNotFound(err) {
			slog.Warn("scheme_index_missing", "alias", alias)
			return []domain.SchemeHit{}, nil
		}
		return nil, err
	}

	out := make([]domain.SchemeHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, domain.SchemeHit{
			PointID: pointID(r.ID),
			Score:   r.Score,
			Scheme:  r.Payload,
		})
	}
	return out, nil
}

func pointID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}
