package main

import "fmt"

// Version is overridden at build time via -ldflags.
var Version = "develop"

// Tag holds the latest release tag the binary was cut from.
var Tag = "0.1.0-rc"

func main() {
	fmt.Printf("labtrace-service version: %s (tag %s)\n", Version, Tag)
}
