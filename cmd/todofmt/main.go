package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BuzzLyutic/todotxt-api/internal/commands"
)

// Populated at build-time via -ldflags flag.
var version = "dev"

func main() {
	if err := commands.NewApp(version).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
