package cli

import (
	"context"
	"io"

	"github.com/alecthomas/kong"

	"github.com/MrSnakeDoc/pinned/internal/version"
)

const description = "Pin comments on a page from the terminal. Uses the comment API when reachable, a local store otherwise."

// CLI is the pinctl command tree.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`

	Config  string `help:"Path to the config file (default ~/.pinned/config.yaml)" type:"path" short:"c"`
	API     string `help:"Comment API base URL (overrides PINCTL_API_URL)" name:"api"`
	Page    string `help:"Page URL the comments are anchored to" short:"p"`
	Local   string `help:"Local fallback backend (file, redis or memory)"`
	Debug   bool   `help:"Enable debug logging" short:"d"`
	Theme   string `help:"Overlay theme (light or dark)"`
	Corner  string `help:"Toggle corner (top-right, top-left, bottom-right, bottom-left)"`
	Timeout string `help:"Request timeout (ex: 3s)"`

	Probe  ProbeCmd  `cmd:"" help:"Check which store is authoritative for the page"`
	List   ListCmd   `cmd:"" help:"List the comments of the page" default:"1"`
	Add    AddCmd    `cmd:"" help:"Pin a new comment at a position"`
	Update UpdateCmd `cmd:"" help:"Change a comment's content or triage fields"`
	Delete DeleteCmd `cmd:"" aliases:"rm" help:"Delete a comment"`
	Render RenderCmd `cmd:"" help:"Print the overlay markup for the page"`
}

// Execute parses args, opens an overlay session and runs the selected command.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("pinctl"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	sess, err := cli.open(ctx, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	defer sess.Close()

	return kctx.Run(sess)
}
