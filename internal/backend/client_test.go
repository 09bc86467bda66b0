package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8501/v1/models/resnet:predict", PredictURL("http://localhost:8501", "resnet"))
	assert.Equal(t, "http://localhost:8501/v1/models/resnet:predict", PredictURL("http://localhost:8501/", "resnet"))
	assert.Equal(t, "https://tfs/v1/models/my%20model:predict", PredictURL("https://tfs", "my model"))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("localhost:8501", "model", time.Second)
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	_, err = NewClient("ftp://localhost", "model", time.Second)
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	_, err = NewClient("http://localhost:8501", "", time.Second)
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8501", "model", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8501/v1/models/model:predict", c.PredictURL())
}

func TestPredict_PostsEnvelope(t *testing.T) {
	const envelope = `{"inputs": [[1,2,3]]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/half_plus_two:predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, envelope, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"outputs": [[2.5, 3.0, 3.5]]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "half_plus_two", 5*time.Second)
	require.NoError(t, err)

	resp, err := c.Predict(context.Background(), envelope)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"outputs": [[2.5, 3.0, 3.5]]}`, string(resp.Body))
}

// TestPredict_ErrorStatusIsNotTransportError hands error statuses back for the output adapter.
func TestPredict_ErrorStatusIsNotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "Servable not found for request: Latest(missing)"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "missing", 5*time.Second)
	require.NoError(t, err)

	resp, err := c.Predict(context.Background(), `{"inputs": []}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Servable not found")
}

func TestPredict_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, "model", time.Second)
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), `{"inputs": []}`)
	assert.Error(t, err)
}

func TestPredict_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL, "model", 10*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Predict(ctx, `{"inputs": []}`)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
