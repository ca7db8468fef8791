package main

import (
	"context"
	"os"

	"github.com/lanzath/authapi/internal/client/cli"
	"github.com/lanzath/authapi/internal/client/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}

}
