// Package supabase queries a PostgREST endpoint with compiled predicates.
package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/internal/providers/rest"
)

type Client struct {
	rest *rest.Client
	key  string
}

func NewClient(baseURL, key string) *Client {
	return &Client{
		rest: rest.NewClient("supabase", baseURL, 15*time.Second),
		key:  key,
	}
}

func (c *Client) Query(ctx context.Context, table string, predicates []core.Predicate, limit int) ([]core.Record, error) {
	headers := map[string]string{
		"apikey":        c.key,
		"Authorization": "Bearer " + c.key,
	}

	var rows []core.Record
	if err := c.rest.DoJSON(ctx, http.MethodGet, buildPath(table, predicates, limit), nil, headers, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// buildPath renders PostgREST filter syntax: col=op.value, with Contains
// predicates wrapped in wildcards for ilike matching. Predicate order is
// preserved.
func buildPath(table string, predicates []core.Predicate, limit int) string {
	params := "select=*"
	for _, p := range predicates {
		value := p.Value
		if p.Op == core.OpContains {
			value = "*" + value + "*"
		}
		params += fmt.Sprintf("&%s=%s.%s",
			url.QueryEscape(p.Field), p.Op, url.QueryEscape(value))
	}
	if limit > 0 {
		params += "&limit=" + strconv.Itoa(limit)
	}
	return "/rest/v1/" + url.PathEscape(table) + "?" + params
}
