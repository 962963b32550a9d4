package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placement/pkg/logging"
)

func TestBroadcasterStreamsEvents(t *testing.T) {
	b := NewBroadcaster(logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readFrame := func() string {
		var frame strings.Builder
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if line == "\n" {
				return frame.String()
			}
			frame.WriteString(line)
		}
	}

	assert.Contains(t, readFrame(), "event: connected")
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Broadcast(Event{Event: "job.deleted", ID: "1", Data: map[string]string{"job_id": "j1"}})
	frame := readFrame()
	assert.Contains(t, frame, "event: job.deleted")
	assert.Contains(t, frame, `data: {"job_id":"j1"}`)

	cancel()
	<-stopped
	assert.Equal(t, 0, b.ClientCount())
}

func TestBroadcasterRefusesAfterStop(t *testing.T) {
	b := NewBroadcaster(logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Run(ctx)

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
