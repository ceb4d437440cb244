package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aussiebroadwan/stockroom/internal/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockroom: %v\n", err)
		os.Exit(2)
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockroom: failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	code := application.Run(context.Background(), os.Args[1:])

	if err := application.Shutdown(); err != nil && code == 0 {
		code = 1
	}
	os.Exit(code)
}
