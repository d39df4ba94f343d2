package main

import (
	"fmt"
	"os"

	"github.com/polybase/payy/backend/prover"
)

func main() {
	if err := prover.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "prover: %v\n", err)
		os.Exit(1)
	}
}
