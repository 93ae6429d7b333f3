package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagafalabella/scraper/internal/config"
	"sagafalabella/scraper/internal/domain"
)

// fakeWebHDFS plays both namenode and datanode.
type fakeWebHDFS struct {
	mu    sync.Mutex
	files map[string][]byte
	url   string
}

func (f *fakeWebHDFS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/datanode") {
		p := strings.TrimPrefix(r.URL.Path, "/datanode")
		body, _ := io.ReadAll(r.Body)
		f.files[p] = body
		w.WriteHeader(http.StatusCreated)
		return
	}

	p := strings.TrimPrefix(r.URL.Path, "/webhdfs/v1")
	if r.URL.Query().Get("user.name") != "hdfs" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.URL.Query().Get("op") {
	case "CREATE":
		if r.URL.Query().Get("noredirect") != "true" || r.URL.Query().Get("overwrite") != "true" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"Location": f.url + "/datanode" + p})
	case "OPEN":
		data, ok := f.files[p]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	case "LISTSTATUS":
		var statuses []string
		for name := range f.files {
			if strings.HasPrefix(name, p+"/") && !strings.Contains(strings.TrimPrefix(name, p+"/"), "/") {
				statuses = append(statuses, fmt.Sprintf(`{"pathSuffix":%q,"type":"FILE"}`, strings.TrimPrefix(name, p+"/")))
			}
		}
		statuses = append(statuses, `{"pathSuffix":"nested","type":"DIRECTORY"}`)
		fmt.Fprintf(w, `{"FileStatuses":{"FileStatus":[%s]}}`, strings.Join(statuses, ","))
	case "DELETE":
		_, ok := f.files[p]
		delete(f.files, p)
		fmt.Fprintf(w, `{"boolean":%t}`, ok)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func TestHDFSStore(t *testing.T) {
	fake := &fakeWebHDFS{files: map[string][]byte{}}
	server := httptest.NewServer(fake)
	defer server.Close()
	fake.url = server.URL

	ctx := context.Background()
	store := NewHDFSStore(config.HDFSConfig{URL: server.URL, User: "hdfs", Timeout: 5})

	p := "/biomont/master/peru/retail/productos/scraper_productos_diario_master_20251224.parquet"
	payload := []byte("PAR1\x00\x01binary\nPAR1")

	_, err := store.Get(ctx, p)
	assert.True(t, errors.Is(err, domain.ErrArtifactNotFound))

	require.NoError(t, store.Put(ctx, p, payload))

	data, err := store.Get(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	paths, err := store.List(ctx, "/biomont/master/peru/retail/productos")
	require.NoError(t, err)
	assert.Equal(t, []string{p}, paths)

	require.NoError(t, store.Delete(ctx, p))
	_, err = store.Get(ctx, p)
	assert.True(t, errors.Is(err, domain.ErrArtifactNotFound))
}
