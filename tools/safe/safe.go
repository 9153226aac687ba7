package safe

import (
	"DProject/logger"
)

// Go starts a goroutine that recovers from panic, so a bad fire-and-forget
// dispatch can't take the process down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}
