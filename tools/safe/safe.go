package safe

import "chatapp/logger"

// Go starts a goroutine that recovers from panics so a bad handler can't
// take down the server.
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
