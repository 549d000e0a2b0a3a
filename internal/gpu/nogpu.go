//go:build nogpu

package gpu

import "fmt"

// Open always fails in nogpu builds.
func Open() (*GPU, error) {
	return nil, fmt.Errorf("%w: built with nogpu", ErrNoGPU)
}
