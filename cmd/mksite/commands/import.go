package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mksite/internal/importer"
)

// ImportCmd groups the converters of the 'import' command.
type ImportCmd struct {
	Markdown ImportMarkdownCmd `cmd:"" help:"Convert a tree of markdown documents into HTML page templates"`
}

// ImportMarkdownCmd implements 'import markdown'.
type ImportMarkdownCmd struct {
	Src      string `arg:"" name:"src" help:"Directory of markdown documents" type:"existingdir"`
	Dest     string `arg:"" name:"dest" help:"Site directory receiving the page templates"`
	Sidecars bool   `default:"true" negatable:"" help:"Write front matter to <page>.html.json next to each page"`
}

func (c *ImportMarkdownCmd) Run(g *Global, _ *CLI) error {
	res, err := importer.New(importer.Options{Sidecars: c.Sidecars}).Import(c.Src, c.Dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Imported %d documents into %s (%d sidecars)\n", res.Converted, c.Dest, res.Sidecars)
	return nil
}
