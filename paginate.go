package mpapi

import (
	"context"
	"encoding/json"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// largeQueryChunks is the chunk count past which an all-fields search warns.
const largeQueryChunks = 10

// subQuery is one slice of a split search and its first page.
type subQuery struct {
	params url.Values
	limit  int
	total  int
	data   []json.RawMessage
}

// pageTask fetches documents [skip, skip+limit) of one sub-query.
type pageTask struct {
	sub   int
	skip  int
	limit int
}

// fetchAll retrieves up to numChunks pages of chunkSize documents (all pages
// when numChunks is 0). The longest comma-separated parameter is split
// across parallel requests; the remaining pages are fetched in parallel.
func (c *Client) fetchAll(ctx context.Context, route string, params url.Values, chunkSize, numChunks int) ([]json.RawMessage, error) {
	path := route + "/"
	subs := c.split(path, params, chunkSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for _, sq := range subs {
		g.Go(func() error {
			p, err := c.get(gctx, route, path, sq.params)
			if err != nil {
				return err
			}
			sq.total = p.Meta.TotalDoc
			sq.data = p.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	var data []json.RawMessage
	for _, sq := range subs {
		total += sq.total
		data = append(data, sq.data...)
	}

	maxPages := numChunks
	if maxPages == 0 {
		maxPages = (total + chunkSize - 1) / chunkSize
	}
	needed := min(maxPages*chunkSize, total)

	if _, all := params["_all_fields"]; all && total/chunkSize > largeQueryChunks {
		c.obs.logger.Warn("retrieving all fields over many chunks; pass Fields to limit the download",
			zap.String("route", route),
			zap.Int("total_doc", total),
			zap.Int("chunks", (total+chunkSize-1)/chunkSize),
		)
	}

	if len(data) >= needed || numChunks == 1 {
		return truncate(data, needed), nil
	}

	tasks := planPages(subs, chunkSize, needed-len(data))
	c.obs.logger.Debug("paginating search",
		zap.String("route", route),
		zap.Int("total_doc", total),
		zap.Int("needed", needed),
		zap.Int("requests", len(tasks)),
	)

	pages := make([][]json.RawMessage, len(tasks))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for i, t := range tasks {
		g.Go(func() error {
			p := maps.Clone(subs[t.sub].params)
			p.Set("_skip", strconv.Itoa(t.skip))
			p.Set("_limit", strconv.Itoa(t.limit))
			pg, err := c.get(gctx, route, path, p)
			if err != nil {
				return err
			}
			pages[i] = pg.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, pg := range pages {
		data = append(data, pg...)
	}
	return truncate(data, needed), nil
}

// planPages lays out the pages after the first one of every sub-query
// until remaining documents are covered.
func planPages(subs []*subQuery, chunkSize, remaining int) []pageTask {
	var tasks []pageTask
	for i, sq := range subs {
		for skip := len(sq.data); skip < sq.total && remaining > 0; skip += chunkSize {
			n := min(chunkSize, sq.total-skip)
			tasks = append(tasks, pageTask{sub: i, skip: skip, limit: chunkSize})
			remaining -= n
		}
	}
	return tasks
}

// split divides the search on its longest comma-separated parameter outside
// QueryNoParallel. Slices are sized so that every request fits in
// MaxURLLength, and the first-page limits sum to chunkSize.
func (c *Client) split(path string, params url.Values, chunkSize int) []*subQuery {
	base := maps.Clone(params)
	base.Set("_limit", strconv.Itoa(chunkSize))

	name, values := parallelParam(params)
	if len(values) < 2 {
		return []*subQuery{{params: base, limit: chunkSize}}
	}

	rest := maps.Clone(base)
	rest.Del(name)
	room := MaxURLLength - len(c.requestURL(path, rest)) - len(url.QueryEscape(name)) - 2

	size := max(1, len(values)/c.parallel)
	for size > 1 && longestJoined(values, size) > room {
		size--
	}

	var groups [][]string
	for chunk := range slices.Chunk(values, size) {
		groups = append(groups, chunk)
	}
	limits := divide(chunkSize, len(groups))

	c.obs.logger.Debug("splitting search",
		zap.String("param", name),
		zap.Int("values", len(values)),
		zap.Int("requests", len(groups)),
	)

	subs := make([]*subQuery, len(groups))
	for i, grp := range groups {
		p := maps.Clone(rest)
		p.Set(name, strings.Join(grp, ","))
		p.Set("_limit", strconv.Itoa(limits[i]))
		subs[i] = &subQuery{params: p, limit: limits[i]}
	}
	return subs
}

// parallelParam returns the splittable parameter with the most values.
func parallelParam(params url.Values) (string, []string) {
	var (
		best   string
		values []string
	)
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if slices.Contains(QueryNoParallel, name) || strings.HasPrefix(name, "_") {
			continue
		}
		vs := params[name]
		if len(vs) != 1 {
			continue
		}
		parts := strings.Split(vs[0], ",")
		if len(parts) > len(values) {
			best, values = name, parts
		}
	}
	return best, values
}

// longestJoined is the longest escaped comma-joined group of the given size.
func longestJoined(values []string, size int) int {
	longest := 0
	for chunk := range slices.Chunk(values, size) {
		longest = max(longest, len(url.QueryEscape(strings.Join(chunk, ","))))
	}
	return longest
}

// divide splits total across n parts that differ by at most one. Every part
// is at least one.
func divide(total, n int) []int {
	out := make([]int, n)
	q, rem := total/n, total%n
	for i := range out {
		out[i] = q
		if i < rem {
			out[i]++
		}
		out[i] = max(out[i], 1)
	}
	return out
}

func truncate(data []json.RawMessage, n int) []json.RawMessage {
	if len(data) > n {
		return data[:n]
	}
	return data
}
