package web

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_StartServeStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewService(ctx, "127.0.0.1:0", mux)
	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "second start")

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	s.Stop()
	select {
	case err := <-s.Done():
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not shut down")
	}
}

func TestService_StartFailsOnBusyAddr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := NewService(ctx, "127.0.0.1:0", http.NewServeMux())
	require.NoError(t, first.Start())
	defer func() {
		first.Stop()
		<-first.Done()
	}()

	second := NewService(ctx, first.Addr(), http.NewServeMux())
	assert.Error(t, second.Start())
}
