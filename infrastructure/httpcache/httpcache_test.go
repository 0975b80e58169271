package httpcache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *BBoltStorage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	res, err := client.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestTransport_ServesRepeatedGetsFromCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items":[]}`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, newStorage(t), time.Hour)}

	for i := 0; i < 3; i++ {
		code, body := get(t, client, srv.URL+"/youtube/v3/playlistItems?playlistId=PL1")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, `{"items":[]}`, body)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	get(t, client, srv.URL+"/youtube/v3/playlistItems?playlistId=PL2")
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestTransport_DoesNotCacheErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"quota"}}`)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, newStorage(t), time.Hour)}

	for i := 0; i < 2; i++ {
		code, _ := get(t, client, srv.URL+"/videos?id=a")
		assert.Equal(t, http.StatusForbidden, code)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestTransport_ExpiredEntriesAreRefetched(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, newStorage(t), time.Nanosecond)}

	get(t, client, srv.URL+"/videos?id=a")
	time.Sleep(time.Millisecond)
	get(t, client, srv.URL+"/videos?id=a")
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}
