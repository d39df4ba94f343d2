package main

import (
	"fmt"
	"os"

	"github.com/polybase/payy/backend/aggregator"
)

func main() {
	if err := aggregator.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "aggregator: %v\n", err)
		os.Exit(1)
	}
}
