// internal/apiclient/paginate.go
package apiclient

import (
	"context"
	"fmt"
	"time"

	"github.com/verakocha/veriflow/pkg/types"
)

// Default pagination configuration
const (
	DefaultPageParam = "page"
	DefaultSizeParam = "limit"
	DefaultPageSize  = 100
	DefaultStartPage = 1
	DefaultMaxPages  = 10
)

// PaginationOptions controls how FetchPaginated walks an API's pages.
type PaginationOptions struct {
	PageParam string
	SizeParam string
	PageSize  int
	StartPage int
	MaxPages  int

	// Extract pulls the record slice out of one page's decoded body.
	// When nil, extractRows is used: a top-level array of objects, or a
	// data/items/results/records array inside a top-level object.
	Extract func(data interface{}) []types.Row

	// HasNext overrides page advancement. It receives the decoded page
	// body and the current page index and returns the next page index.
	// When nil, more pages are assumed while a page returns exactly
	// PageSize records.
	HasNext func(data interface{}, page int) (next int, ok bool)
}

func (o *PaginationOptions) applyDefaults() {
	if o.PageParam == "" {
		o.PageParam = DefaultPageParam
	}
	if o.SizeParam == "" {
		o.SizeParam = DefaultSizeParam
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.StartPage <= 0 {
		o.StartPage = DefaultStartPage
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
}

// FetchPaginated repeatedly calls Request with page and size query
// parameters injected, accumulating extracted rows until the source
// reports no more pages, a page comes back empty or short, or MaxPages
// is reached. The returned envelope carries the accumulated rows and
// the wall-clock duration of the whole traversal.
func (c *Client) FetchPaginated(ctx context.Context, cfg types.APIRequestConfig, opts PaginationOptions) *types.APIResponse {
	start := time.Now()
	opts.applyDefaults()

	extract := opts.Extract
	if extract == nil {
		extract = extractRows
	}

	var collected []types.Row
	page := opts.StartPage

	for fetched := 0; fetched < opts.MaxPages; fetched++ {
		pageCfg := cfg
		pageCfg.QueryParams = make(map[string]string, len(cfg.QueryParams)+2)
		for key, value := range cfg.QueryParams {
			pageCfg.QueryParams[key] = value
		}
		pageCfg.QueryParams[opts.PageParam] = fmt.Sprintf("%d", page)
		pageCfg.QueryParams[opts.SizeParam] = fmt.Sprintf("%d", opts.PageSize)

		resp := c.Request(ctx, pageCfg)
		if !resp.Success {
			resp.Duration = time.Since(start)
			return resp
		}

		rows := extract(resp.Data)
		if len(rows) == 0 {
			break
		}
		collected = append(collected, rows...)

		if opts.HasNext != nil {
			next, ok := opts.HasNext(resp.Data, page)
			if !ok {
				break
			}
			page = next
		} else {
			if len(rows) < opts.PageSize {
				break
			}
			page++
		}
	}

	return &types.APIResponse{
		Success:  true,
		Data:     collected,
		Duration: time.Since(start),
	}
}

// extractRows is the default record extractor for paginated responses.
func extractRows(data interface{}) []types.Row {
	switch v := data.(type) {
	case []types.Row:
		return v
	case []interface{}:
		return rowsFromSlice(v)
	case map[string]interface{}:
		for _, key := range []string{"data", "items", "results", "records", "rows"} {
			if nested, ok := v[key].([]interface{}); ok {
				return rowsFromSlice(nested)
			}
		}
	}
	return nil
}

func rowsFromSlice(items []interface{}) []types.Row {
	rows := make([]types.Row, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			rows = append(rows, types.Row(obj))
		}
	}
	return rows
}
