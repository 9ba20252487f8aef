package sse

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func waitForCount(t *testing.T, b *Broker, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", b.ClientCount(), want)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch := b.Subscribe()
	waitForCount(t, b, 1)

	b.Unsubscribe(ch)
	waitForCount(t, b, 0)

	// Channel is closed after unsubscribe.
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after unsubscribe")
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	waitForCount(t, b, 2)

	b.Publish(Event{Type: "test.event", Data: map[string]string{"k": "v"}})

	for i, ch := range []chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			s := string(msg)
			if !strings.Contains(s, "event: test.event") || !strings.Contains(s, `"k":"v"`) {
				t.Errorf("client %d got %q", i, s)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %d did not receive event", i)
		}
	}
}

func TestPublishFileEventKinds(t *testing.T) {
	b := NewBroker(time.Hour) // suppress index.updated for this test
	defer b.Close()

	ch := b.Subscribe()
	waitForCount(t, b, 1)

	// First file event also triggers the initial index.updated.
	b.PublishFileEvent("indexed", "quests/main.qtx")
	b.PublishFileEvent("removed", "old.lan")

	var got []string
	deadline := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case msg := <-ch:
			got = append(got, string(msg))
		case <-deadline:
			t.Fatalf("received %d messages, want 3: %v", len(got), got)
		}
	}

	if !strings.Contains(got[0], "event: file.indexed") || !strings.Contains(got[0], "quests/main.qtx") {
		t.Errorf("first message = %q", got[0])
	}
	if !strings.Contains(got[1], "event: index.updated") {
		t.Errorf("second message = %q", got[1])
	}
	if !strings.Contains(got[2], "event: file.removed") || !strings.Contains(got[2], "old.lan") {
		t.Errorf("third message = %q", got[2])
	}
}

func TestIndexUpdatedThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	waitForCount(t, b, 1)

	for i := 0; i < 5; i++ {
		b.PublishFileEvent("indexed", "a.qtx")
	}

	updated := 0
	timeout := time.After(time.Second)
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: index.updated") {
				updated++
			}
		case <-timeout:
			break loop
		}
	}

	if updated != 1 {
		t.Errorf("index.updated broadcast %d times, want 1 within throttle window", updated)
	}
}

func TestCloseClosesClients(t *testing.T) {
	b := NewBroker(time.Second)

	ch := b.Subscribe()
	waitForCount(t, b, 1)

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after broker close")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after broker close")
	}

	// Operations after close are safe no-ops.
	b.Publish(Event{Type: "late"})
	b.PublishFileEvent("indexed", "late.qtx")
	if n := b.ClientCount(); n != 0 {
		t.Errorf("client count after close = %d, want 0", n)
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(rec, req)
		close(done)
	}()

	waitForCount(t, b, 1)
	b.Publish(Event{Type: "file.indexed", Data: map[string]string{"path": "x.idx"}})

	// Give the broadcast time to reach the handler, then stop it. The
	// recorder body is only inspected after the handler goroutine exits.
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after context cancel")
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: file.indexed") || !strings.Contains(body, `"path":"x.idx"`) {
		t.Errorf("body missing event payload: %q", body)
	}
}
