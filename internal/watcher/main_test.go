package watcher

import (
	"testing"

	"go.uber.org/goleak"
)

// The watcher spawns a long-lived goroutine per Watcher; every test must
// tear its Watcher down, and this catches the ones that forget.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
