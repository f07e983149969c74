package main

import (
	"fmt"
	"os"

	"shop_reconcile/internal"
)

func main() {
	if err := internal.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
