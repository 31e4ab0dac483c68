package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/skekre98/drmgr/actuator"
	"github.com/skekre98/drmgr/board"
	"github.com/skekre98/drmgr/catalog"
	"github.com/skekre98/drmgr/config"
	"github.com/skekre98/drmgr/config/source"
	"github.com/skekre98/drmgr/core"
	"github.com/skekre98/drmgr/document"
	"github.com/skekre98/drmgr/logging"
	"github.com/skekre98/drmgr/transfer"
	"github.com/skekre98/drmgr/web"
)

type command struct {
	name string

	settings  config.Settings
	logger    *slog.Logger
	catalog   *catalog.Catalog
	selection *catalog.Selection
	registry  *prometheus.Registry
	sep       rune

	board       string
	file        string
	metricsFile string
}

func newCommand(ctx context.Context, name string, args []string, stderr io.Writer) (*command, error) {
	fs := pflag.NewFlagSet("drmgr "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		settingsPath string
		profile      string
		catalogPath  string
		sections     string
		all          bool
		c            = &command{name: name}
	)
	fs.StringVar(&settingsPath, "config", "", "settings file or directory (default: ./drmgr.yaml if present)")
	fs.StringVar(&profile, "profile", "", "settings profile overlay")
	fs.StringVar(&catalogPath, "catalog", "", "YAML file replacing the built-in section catalog")
	fs.StringVarP(&sections, "sections", "s", "", "comma separated sections to use instead of the defaults")
	fs.BoolVar(&all, "all", false, "use every section")
	fs.StringVarP(&c.board, "board", "b", "", "board settings file")
	fs.StringVarP(&c.file, "file", "f", "", "design rules document")
	fs.StringVar(&c.metricsFile, "metrics-file", "", "write transfer metrics to this file in Prometheus text format")
	sets := source.BindFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	settings, err := config.Load(ctx,
		config.Defaults(),
		&source.FileSource{Path: settingsPath, Profile: profile, Optional: settingsPath == ""},
		&source.EnvSource{},
		sets,
	)
	if err != nil {
		return nil, err
	}
	c.settings = settings
	c.logger = logging.New(stderr, settings.Log).With("command", name)

	if catalogPath == "" {
		catalogPath = settings.Catalog
	}
	// the separator setting applies to custom catalogs only
	c.sep = '|'
	if catalogPath != "" {
		if c.catalog, err = catalog.Load(catalogPath, settings.SeparatorRune()); err != nil {
			return nil, err
		}
		c.sep = settings.SeparatorRune()
	} else {
		c.catalog = catalog.Default()
	}

	c.selection = catalog.NewSelection(c.catalog)
	switch {
	case all:
		c.selection.All()
	case fs.Changed("sections"):
		if err := c.selection.Only(catalog.ParseNames(sections)...); err != nil {
			return nil, err
		}
	}

	if c.board == "" {
		c.board = settings.Board
	}
	c.registry = prometheus.NewRegistry()
	return c, nil
}

func (c *command) service() *transfer.Service {
	return transfer.New(board.NewFile(c.board),
		transfer.WithSeparator(c.sep),
		transfer.WithLogger(c.logger),
		transfer.WithMetrics(transfer.NewMetrics(c.registry)),
	)
}

func (c *command) run(ctx context.Context, stdout io.Writer) error {
	var err error
	switch c.name {
	case "sections":
		err = c.listSections(stdout)
	case "export":
		err = c.export(ctx, stdout)
	case "import":
		err = c.importRules(ctx, stdout)
	case "serve":
		err = c.serve(ctx)
	}
	if c.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(c.metricsFile, c.registry); werr != nil && err == nil {
			err = fmt.Errorf("write metrics: %w", werr)
		}
	}
	return err
}

func (c *command) listSections(stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSELECTED\tLABEL\tPATH")
	for _, s := range c.catalog.Sections() {
		mark := "no"
		if c.selection.Enabled(s.Name) {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, mark, s.Label, s.Path)
	}
	return tw.Flush()
}

func (c *command) requirePaths() error {
	var missing []string
	if c.board == "" {
		missing = append(missing, "--board")
	}
	if c.file == "" {
		missing = append(missing, "--file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s requires %s", c.name, strings.Join(missing, " and "))
	}
	if len(c.selection.Names()) == 0 {
		return errors.New("no sections selected")
	}
	return nil
}

func (c *command) export(ctx context.Context, stdout io.Writer) error {
	if err := c.requirePaths(); err != nil {
		return err
	}
	dest := c.file
	if filepath.Ext(dest) == "" {
		dest += document.Extension
	}
	if _, err := c.service().Export(ctx, c.selection.Paths(), dest); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported %s to %s\n", strings.Join(c.selection.Names(), ", "), dest)
	return nil
}

func (c *command) importRules(ctx context.Context, stdout io.Writer) error {
	if err := c.requirePaths(); err != nil {
		return err
	}
	if _, err := c.service().Import(ctx, c.file, c.selection.Paths()); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported %s from %s into %s\n", strings.Join(c.selection.Names(), ", "), c.file, c.board)
	return nil
}

func (c *command) serve(ctx context.Context) error {
	if c.board == "" {
		return errors.New("serve requires --board")
	}
	api := &web.API{Service: c.service(), Catalog: c.catalog}

	app := core.NewApp(c.logger,
		web.Module(web.WithRoutes(api.Routes)),
		actuator.Module(actuator.Info{Name: "drmgr", Version: version}),
	)
	core.Put[config.Settings](app.Container, c.settings)
	core.Put[*slog.Logger](app.Container, c.logger)
	core.Put[*prometheus.Registry](app.Container, c.registry)

	return app.Run(ctx)
}
