package logger

import (
	"fmt"
	"testing"
	"time"

	"channel-console/internal/interfaces"
)

func generateTestAction(index int) *ActionLog {
	outcome := interfaces.OutcomeSuccess
	if index%5 == 0 {
		outcome = interfaces.OutcomeRejected
	}
	return NewActionLog(interfaces.ActionEvent{
		ID:          fmt.Sprintf("bench-action-%d", index),
		Kind:        "health-test",
		ChannelID:   index%50 + 1,
		ChannelName: fmt.Sprintf("channel-%d", index%50+1),
		Value:       "gpt-4o-mini",
		Outcome:     outcome,
		Message:     "Channel test succeeded",
		Duration:    120 * time.Millisecond,
		Timestamp:   time.Now(),
	})
}

func setupBenchStorage(b *testing.B) *GORMStorage {
	b.Helper()
	storage, err := NewGORMStorage(b.TempDir(), 0, nil)
	if err != nil {
		b.Fatalf("Failed to create GORM storage: %v", err)
	}
	b.Cleanup(func() { storage.Close() })
	return storage
}

func BenchmarkStorageWrite(b *testing.B) {
	storage := setupBenchStorage(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := storage.SaveAction(generateTestAction(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStorageRead(b *testing.B) {
	storage := setupBenchStorage(b)
	for i := 0; i < 1000; i++ {
		if err := storage.SaveAction(generateTestAction(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.Run("Page", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, _, err := storage.GetActions(50, 0, false); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("FailedOnly", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, _, err := storage.GetActions(50, 0, true); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("ByChannel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := storage.GetActionsByChannel(i%50 + 1); err != nil {
				b.Fatal(err)
			}
		}
	})
}
