package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/logger"
)

// SafeGo запускает горутину, panic в ней логируется и не роняет процесс.
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

// SafeGoWithContext то же, что SafeGo, с передачей контекста.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer recoverPanic()
		fn(ctx)
	}()
}

func recoverPanic() {
	if r := recover(); r != nil {
		logger.Entry(logrus.Fields{"panic": r, "stack": string(debug.Stack())}).Error("goroutine: panic перехвачена")
	}
}
