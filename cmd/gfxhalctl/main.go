// Command gfxhalctl inspects the settings and pipeline tables gfxhal
// resolves for each chip revision.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
