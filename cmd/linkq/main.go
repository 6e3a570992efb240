// Command linkq exercises the SPSC linked queue.
//
// Usage:
//
//	go run ./cmd/linkq bench --runs 5 --plot bench.png
//	go run ./cmd/linkq pump --events 1000000 --live
//	go run ./cmd/linkq pump --rate 5000 --duration 30s --metrics-addr :9100
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
