package mpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivide(t *testing.T) {
	tests := []struct {
		total, n int
		want     []int
	}{
		{10, 3, []int{4, 3, 3}},
		{9, 3, []int{3, 3, 3}},
		{2, 4, []int{1, 1, 1, 1}},
		{1000, 1, []int{1000}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, divide(tt.total, tt.n), "divide(%d, %d)", tt.total, tt.n)
	}
}

func TestPlanPages(t *testing.T) {
	subs := []*subQuery{
		{total: 25, data: make([]json.RawMessage, 10)},
		{total: 3, data: make([]json.RawMessage, 3)},
		{total: 12, data: make([]json.RawMessage, 5)},
	}
	tasks := planPages(subs, 10, 100)
	assert.Equal(t, []pageTask{
		{sub: 0, skip: 10, limit: 10},
		{sub: 0, skip: 20, limit: 10},
		{sub: 2, skip: 5, limit: 10},
	}, tasks)

	tasks = planPages(subs, 10, 5)
	assert.Len(t, tasks, 1, "planning stops once the remaining documents are covered")
}

func TestParallelParam(t *testing.T) {
	params := url.Values{
		"material_ids": {"mp-1,mp-2,mp-3"},
		"elements":     {"Si,O,Fe,Li"},
		"formula":      {"SiO2"},
		"_fields":      {"a,b,c,d,e"},
	}
	name, values := parallelParam(params)
	assert.Equal(t, "material_ids", name)
	assert.Len(t, values, 3)

	name, _ = parallelParam(url.Values{"elements": {"Si,O"}})
	assert.Empty(t, name)
}

func TestSplit(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(t, WithParallelism(4))

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("mp-%d", i+1)
	}
	subs := c.split("summary/", url.Values{"material_ids": {strings.Join(ids, ",")}}, 100)

	require.Len(t, subs, 5)
	var seen []string
	limit := 0
	for _, sq := range subs {
		seen = append(seen, strings.Split(sq.params.Get("material_ids"), ",")...)
		limit += sq.limit
		assert.Equal(t, fmt.Sprint(sq.limit), sq.params.Get("_limit"))
	}
	assert.Equal(t, ids, seen)
	assert.Equal(t, 100, limit, "first-page limits sum to the chunk size")
}

func TestSplit_URLLength(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(t, WithParallelism(1))

	ids := make([]string, 600)
	for i := range ids {
		ids[i] = fmt.Sprintf("mp-%d", 100000+i)
	}
	subs := c.split("summary/", url.Values{"material_ids": {strings.Join(ids, ",")}}, 1000)

	require.Greater(t, len(subs), 1)
	for _, sq := range subs {
		u := c.requestURL("summary/", sq.params)
		assert.LessOrEqual(t, len(u), MaxURLLength)
	}
}

func TestSplit_NoSplittable(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(t)

	subs := c.split("summary/", url.Values{"formula": {"SiO2"}}, 50)
	require.Len(t, subs, 1)
	assert.Equal(t, "50", subs[0].params.Get("_limit"))
	assert.Equal(t, "SiO2", subs[0].params.Get("formula"))
}

func TestFetchAll_Paginates(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/summary/", paged(materialDocs(25), nil))
	c := api.client(t)

	data, err := c.fetchAll(context.Background(), "summary", url.Values{}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, data, 25)
	assert.Len(t, api.requests(), 3)
}

func TestFetchAll_NumChunks(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/summary/", paged(materialDocs(25), nil))
	c := api.client(t)

	data, err := c.fetchAll(context.Background(), "summary", url.Values{}, 10, 2)
	require.NoError(t, err)
	assert.Len(t, data, 20)

	data, err = c.fetchAll(context.Background(), "summary", url.Values{}, 10, 1)
	require.NoError(t, err)
	assert.Len(t, data, 10)
}

func TestFetchAll_SplitAndPaginate(t *testing.T) {
	docs := materialDocs(40)
	api := newFakeAPI(t)
	api.handle("/summary/", paged(docs, inList("material_ids", "material_id")))
	c := api.client(t, WithParallelism(2))

	ids := make([]string, 30)
	for i := range ids {
		ids[i] = fmt.Sprintf("mp-%d", i+1)
	}
	data, err := c.fetchAll(context.Background(), "summary",
		url.Values{"material_ids": {strings.Join(ids, ",")}}, 4, 0)
	require.NoError(t, err)
	require.Len(t, data, 30)

	seen := map[string]bool{}
	for _, raw := range data {
		var d struct {
			MaterialID string `json:"material_id"`
		}
		require.NoError(t, json.Unmarshal(raw, &d))
		seen[d.MaterialID] = true
	}
	assert.Len(t, seen, 30, "every document is retrieved exactly once")
}
