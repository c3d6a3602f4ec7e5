// Boardstats reports on student gameboard engagement and charts the results.
package main

import (
	"fmt"
	"os"

	"github.com/swamp-dev/boardstats/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
