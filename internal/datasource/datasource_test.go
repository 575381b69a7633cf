package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bbl-multi-builder/internal/config"
)

const csvBody = "Team,BatsmanName\nSydney Sixers,J.Vince\n"

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        1,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      2 * time.Millisecond,
		CircuitBreakerMax: 2,

		CircuitBreakerCooldown: time.Minute,
	}
}

func readAll(t *testing.T, src Source) string {
	t.Helper()
	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestFileSourceOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batters.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvBody), 0o600))

	src := NewFileSource(path)
	assert.Equal(t, csvBody, readAll(t, src))
	assert.Equal(t, "file://"+path, src.Name())
}

func TestFileSourceMissing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := src.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var srcErr SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeNotFound, srcErr.Code)
}

func TestFileSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource("unused.csv").Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSourceOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, csvBody)
	}))
	defer server.Close()

	src := NewHTTPSource(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL+"/batters.csv")
	assert.Equal(t, csvBody, readAll(t, src))
}

func TestHTTPSourceStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"not found", http.StatusNotFound, ErrCodeNotFound},
		{"forbidden", http.StatusForbidden, ErrCodeClientError},
		{"server error after retries", http.StatusInternalServerError, ErrCodeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			src := NewHTTPSource(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL)
			_, err := src.Open(context.Background())
			require.Error(t, err)

			var srcErr SourceError
			require.True(t, errors.As(err, &srcErr))
			assert.Equal(t, tt.wantCode, srcErr.Code)
		})
	}
}

func TestHTTPClientRetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, csvBody)
	}))
	defer server.Close()

	src := NewHTTPSource(NewRateLimitedHTTPClient(testHTTPConfig(), nil), server.URL)
	assert.Equal(t, csvBody, readAll(t, src))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPClientCircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, server.URL)
		require.Error(t, err)
	}

	_, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestHTTPClientCircuitBreakerRecovers(t *testing.T) {
	var healthy atomic.Bool
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(csvBody))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 1
	cfg.CircuitBreakerCooldown = 50 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)
	ctx := context.Background()

	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCircuitOpen)

	_, err = client.Get(ctx, server.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), hits.Load())

	// a failed trial keeps the breaker open for another cooldown
	time.Sleep(60 * time.Millisecond)
	_, err = client.Get(ctx, server.URL)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())

	_, err = client.Get(ctx, server.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)

	healthy.Store(true)
	time.Sleep(60 * time.Millisecond)

	resp, err := client.Get(ctx, server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(ctx, server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(4), hits.Load())
}

type fakeObjectGetter struct {
	objects map[string]string
	input   *s3.GetObjectInput
}

func (f *fakeObjectGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3SourceOpen(t *testing.T) {
	getter := &fakeObjectGetter{objects: map[string]string{"stats/bbl/batters.csv": csvBody}}
	src := NewS3Source(getter, "stats", "bbl/batters.csv")

	assert.Equal(t, csvBody, readAll(t, src))
	assert.Equal(t, "stats", *getter.input.Bucket)
	assert.Equal(t, "s3://stats/bbl/batters.csv", src.Name())
}

func TestS3SourceMissingObject(t *testing.T) {
	src := NewS3Source(&fakeObjectGetter{}, "stats", "missing.csv")

	_, err := src.Open(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactoryNewSource(t *testing.T) {
	factory := NewFactory(nil)
	ctx := context.Background()

	src, err := factory.NewSource(ctx, config.SourceConfig{Type: "file", Path: "data/BBL_batters.csv"})
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	src, err = factory.NewSource(ctx, config.SourceConfig{Type: "http", URL: "http://example.com/b.csv", RateLimit: 1})
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	_, err = factory.NewSource(ctx, config.SourceConfig{Type: "http"})
	assert.Error(t, err)

	_, err = factory.NewSource(ctx, config.SourceConfig{Type: "ftp"})
	assert.Error(t, err)
}
