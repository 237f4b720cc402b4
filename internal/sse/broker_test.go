package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(nil)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeLogUpdated, Data: map[string]string{"text": "[2024-03-01 09:00:00] 質問"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: log.updated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, "質問") {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSubscribeReceivesSnapshotFirst(t *testing.T) {
	b := NewBroker(func() []Event {
		return []Event{
			{Type: TypePatternsUpdated, Data: []string{"a", "b"}},
			{Type: TypeLogUpdated, Data: map[string]string{"text": ""}},
		}
	})
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeConvertStarted, Data: map[string]bool{"busy": true}})

	want := []string{"event: patterns.updated", "event: log.updated", "event: convert.started"}
	for i, w := range want {
		select {
		case msg := <-ch:
			if !strings.HasPrefix(string(msg), w) {
				t.Errorf("message %d = %q, want prefix %q", i, msg, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for message %d", i)
		}
	}
}

func TestSubscribeDoesNotMissChangeDuringSnapshot(t *testing.T) {
	var state atomic.Int32
	state.Store(1)
	var b *Broker
	var once sync.Once
	b = NewBroker(func() []Event {
		v := state.Load()
		// A change lands right after the snapshot was read.
		once.Do(func() {
			state.Store(2)
			b.Publish(Event{Type: TypeLogUpdated, Data: 2})
		})
		return []Event{{Type: TypeLogUpdated, Data: v}}
	})
	defer b.Close()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var last string
	for i := 0; i < 2; i++ {
		select {
		case msg := <-ch:
			last = string(msg)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for message %d (last %q)", i, last)
		}
	}
	if last != "event: log.updated\ndata: 2\n\n" {
		t.Errorf("last message = %q, want the newer state", last)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypePatternsUpdated, Data: []string{"質問"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: patterns.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(nil)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: TypeLogUpdated, Data: i})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(nil)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-ops after close.
	b.Publish(Event{Type: TypeLogUpdated})
	b.Close()
	if _, ok := <-b.Subscribe(); ok {
		t.Error("Subscribe after close should return a closed channel")
	}
}
