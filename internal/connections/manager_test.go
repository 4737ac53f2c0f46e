package connections

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestManager(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("basic add and remove stream", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)

		stream := Stream{ID: "stream-1", Transport: "http", StartedAt: time.Now()}

		manager.AddStream(stream)
		if !manager.HasStream(stream.ID) {
			t.Error("Stream not found after adding")
		}
		if manager.GetStreamCount() != 1 {
			t.Errorf("Expected 1 stream, got %d", manager.GetStreamCount())
		}

		manager.RemoveStream(stream.ID)
		if manager.HasStream(stream.ID) {
			t.Error("Stream still exists after removal")
		}
	})

	t.Run("concurrent stream operations", func(t *testing.T) {
		manager := NewManager(DefaultTimeouts)
		concurrentOps := 100
		var wg sync.WaitGroup
		wg.Add(concurrentOps)

		for i := 0; i < concurrentOps; i++ {
			go func(id string) {
				defer wg.Done()
				select {
				case <-ctx.Done():
					return
				default:
					manager.AddStream(Stream{ID: id, Transport: "http"})
				}
			}(fmt.Sprintf("stream-%d", i))
		}

		waitCh := make(chan struct{})
		go func() {
			wg.Wait()
			close(waitCh)
		}()

		select {
		case <-ctx.Done():
			t.Fatal("Test timed out")
		case <-waitCh:
		}

		if got := manager.GetStreamCount(); got != concurrentOps {
			t.Errorf("Expected %d streams, got %d", concurrentOps, got)
		}

		for i := 0; i < concurrentOps; i++ {
			manager.RemoveStream(fmt.Sprintf("stream-%d", i))
		}

		if got := manager.GetStreamCount(); got != 0 {
			t.Errorf("Expected 0 streams after cleanup, got %d", got)
		}
	})

	t.Run("timeout configuration", func(t *testing.T) {
		customTimeouts := TimeoutConfig{
			PingPeriod: 54 * time.Second,
			WriteWait:  20 * time.Second,
		}

		manager := NewManager(customTimeouts)
		if manager.GetTimeouts() != customTimeouts {
			t.Error("Timeout configuration not set correctly")
		}

		newTimeouts := TimeoutConfig{
			PingPeriod: 108 * time.Second,
			WriteWait:  30 * time.Second,
		}
		manager.SetTimeouts(newTimeouts)

		if manager.GetTimeouts() != newTimeouts {
			t.Error("Timeout configuration not updated correctly")
		}
	})
}
