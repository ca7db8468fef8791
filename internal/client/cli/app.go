package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/lanzath/authapi/internal/client/client"
	"github.com/lanzath/authapi/internal/client/config"
)

type App struct {
	config *config.Config
	api    client.Client
	tokens *tokenFile
	reader *bufio.Reader
	out    io.Writer
}

// NewApp returns an App reading from stdin and writing to stdout. The API
// client is built once flags are parsed, so --server can override config.
func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run executes the command line in args (without the program name).
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.out)
	cmd.SetErr(a.out)
	return cmd.ExecuteContext(ctx)
}

// prepare finishes wiring after flags are applied to a.config.
func (a *App) prepare() {
	if a.api == nil {
		a.api = client.NewHTTPClient(a.config.ServerURL, a.config.RequestTimeout)
	}
	if a.tokens == nil {
		a.tokens = &tokenFile{path: a.config.TokenFile}
	}
}
