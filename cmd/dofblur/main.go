// Command dofblur applies a depth of field effect to an image using a
// depth map.
//
// Usage:
//
//	dofblur render -i photo.png -d depth.png -o out.webp --blur-level high
//	dofblur config init
//	dofblur shader --kernel 15 --direction vertical
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newApp().rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
