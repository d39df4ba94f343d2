package main

import (
	"fmt"
	"os"

	"github.com/polybase/payy/backend/validator"
)

func main() {
	if err := validator.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "validator: %v\n", err)
		os.Exit(1)
	}
}
