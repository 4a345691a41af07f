package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func recvToast(t *testing.T, c *Client) Toast {
	t.Helper()
	select {
	case data := <-c.send:
		var toast Toast
		if err := json.Unmarshal(data, &toast); err != nil {
			t.Fatalf("invalid toast payload: %v", err)
		}
		return toast
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a toast")
		return Toast{}
	}
}

func TestHub_BroadcastsToRegisteredPages(t *testing.T) {
	hub := runHub(t)

	a := NewClient(hub, nil)
	b := NewClient(hub, nil)
	hub.Register(a)
	hub.Register(b)

	hub.ShowSuccess("Profile updated successfully")

	for _, c := range []*Client{a, b} {
		toast := recvToast(t, c)
		if toast.Level != "success" || toast.Message != "Profile updated successfully" {
			t.Errorf("unexpected toast %+v", toast)
		}
	}
}

func TestHub_ErrorLevel(t *testing.T) {
	hub := runHub(t)

	c := NewClient(hub, nil)
	hub.Register(c)

	hub.ShowError("Session expired. Please login again.")

	toast := recvToast(t, c)
	if toast.Level != "error" {
		t.Errorf("expected error level, got %q", toast.Level)
	}
}

func TestHub_EmitWithoutPagesDropsQuietly(t *testing.T) {
	hub := runHub(t)

	// Must not block or panic with nothing connected.
	hub.ShowSuccess("nobody listening")
	hub.ShowError("still nobody")
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := runHub(t)

	c := NewClient(hub, nil)
	hub.Register(c)
	hub.Unregister(c)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel after unregister")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel never closed")
	}

	// Broadcasting after the page left must not panic.
	hub.ShowSuccess("late toast")
}

func TestHub_RegisterAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	finished := make(chan struct{})
	go func() {
		hub.Register(NewClient(hub, nil))
		hub.ShowSuccess("after shutdown")
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked after shutdown")
	}
}
