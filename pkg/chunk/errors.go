// ABOUTME: Error constructors for the chunk algebra's invariant checks
// ABOUTME: Small helpers so validation call sites stay one line
package chunk

import "fmt"

func errInvalidInterval(format string, args ...interface{}) error {
	return fmt.Errorf("chunk: invalid interval: "+format, args...)
}
