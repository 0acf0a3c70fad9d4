// Command tempcast lists countries, forecasts a country's monthly temperatures and serves the
// forecasts over http.
package main

import (
	"os"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
