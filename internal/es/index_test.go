package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_api/internal/models"
)

type recorded struct {
	method string
	path   string
	body   string
}

func fakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, &calls
}

func TestProductIndex_IndexAndDelete(t *testing.T) {
	client, calls := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	idx := NewProductIndex(client, "products")

	prod := &models.Product{ID: "p1", Name: "lamp", Tags: []string{"light"}}
	require.NoError(t, idx.IndexProduct(context.Background(), prod))
	require.NoError(t, idx.DeleteProduct(context.Background(), "p1"))

	require.Len(t, *calls, 2)
	assert.Equal(t, "/products/_doc/p1", (*calls)[0].path)
	assert.Contains(t, (*calls)[0].body, `"product_name":"lamp"`)
	assert.Equal(t, http.MethodDelete, (*calls)[1].method)
}

func TestProductIndex_Search(t *testing.T) {
	client, calls := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"p1","product_name":"lamp","price":9.5}}]}}`))
	})
	idx := NewProductIndex(client, "products")

	total, prods, err := idx.Search(context.Background(), "lamp", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, prods, 1)
	assert.Equal(t, "lamp", prods[0].Name)
	assert.Equal(t, 9.5, prods[0].Price)

	require.Len(t, *calls, 1)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/_search"))
	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &q))
	assert.EqualValues(t, 10, q["size"])
}

func TestProductIndex_SearchError(t *testing.T) {
	client, _ := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	_, _, err := NewProductIndex(client, "products").Search(context.Background(), "x", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search")
}
