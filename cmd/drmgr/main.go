// Command drmgr exports and imports selected sections of a board's design
// rules to and from .kidr documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `usage: drmgr <command> [flags]

commands:
  sections   list the selectable sections
  export     write selected sections of the board to a file
  import     apply selected sections of a file to the board
  serve      run the HTTP API
  version    print the version
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "drmgr:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("no command given")
	}

	name, args := args[0], args[1:]
	switch name {
	case "sections", "export", "import", "serve":
	case "version":
		fmt.Fprintln(stdout, version)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", name)
	}

	cmd, err := newCommand(ctx, name, args, stderr)
	if err != nil {
		return err
	}
	return cmd.run(ctx, stdout)
}
