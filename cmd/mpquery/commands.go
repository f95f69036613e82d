package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/cheynewallace/tabby"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mpapi"
	logpkg "github.com/kailas-cloud/mpapi/internal/logger"
)

const (
	apiKeyFlagName   = "api-key"
	endpointFlagName = "endpoint"
	logLevelFlagName = "log-level"

	paramFlagName      = "param"
	fieldsFlagName     = "fields"
	sortFlagName       = "sort"
	chunkSizeFlagName  = "chunk-size"
	numChunksFlagName  = "num-chunks"
	jsonFlagName       = "json"
	dirFlagName        = "dir"
	noCompressFlagName = "no-compress"
)

func searchCommand() cli.Command {
	return cli.Command{
		Name:      "search",
		Usage:     "search a route and print the matching documents",
		ArgsUsage: "<route>",
		Flags: []cli.Flag{
			cli.StringSliceFlag{
				Name:  paramFlagName + ", p",
				Usage: "query parameter as key=value, repeatable",
			},
			cli.StringFlag{
				Name:  fieldsFlagName + ", f",
				Usage: "comma-separated fields to return",
			},
			cli.StringFlag{
				Name:  sortFlagName,
				Usage: "comma-separated sort fields, prefix with - for descending",
			},
			cli.IntFlag{
				Name:  chunkSizeFlagName,
				Usage: "documents per page",
			},
			cli.IntFlag{
				Name:  numChunksFlagName,
				Usage: "maximum number of pages to fetch",
			},
			cli.BoolFlag{
				Name:  jsonFlagName,
				Usage: "print documents as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			route, err := openRoute(c)
			if err != nil {
				return err
			}
			q, err := parseParams(c.StringSlice(paramFlagName))
			if err != nil {
				return err
			}

			fields := splitList(c.String(fieldsFlagName))
			var opts []mpapi.SearchOption
			if len(fields) > 0 {
				opts = append(opts, mpapi.Fields(fields...))
			}
			if sorts := splitList(c.String(sortFlagName)); len(sorts) > 0 {
				opts = append(opts, mpapi.SortFields(sorts...))
			}
			if c.IsSet(chunkSizeFlagName) {
				opts = append(opts, mpapi.ChunkSize(c.Int(chunkSizeFlagName)))
			}
			if c.IsSet(numChunksFlagName) {
				opts = append(opts, mpapi.NumChunks(c.Int(numChunksFlagName)))
			}

			docs, err := route.Untyped.Search(ctx, q, opts...)
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(docs)
			}
			columns := fields
			if len(columns) == 0 && route.Key != "" {
				columns = []string{route.Key}
			}
			fmt.Printf("%s documents:\n", humanize.Comma(int64(len(docs))))
			printTable(columns, docs)
			return nil
		},
	}
}

func getCommand() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "print one document by its primary key",
		ArgsUsage: "<route> <id>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  fieldsFlagName + ", f",
				Usage: "comma-separated fields to return",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			if c.NArg() != 2 {
				return fmt.Errorf("expected <route> <id>")
			}
			route, err := openRoute(c)
			if err != nil {
				return err
			}
			doc, err := route.Untyped.GetDataByID(ctx, c.Args().Get(1), splitList(c.String(fieldsFlagName))...)
			if err != nil {
				return err
			}
			return printJSON(doc)
		},
	}
}

func countCommand() cli.Command {
	return cli.Command{
		Name:      "count",
		Usage:     "print the number of documents matching a query",
		ArgsUsage: "<route>",
		Flags: []cli.Flag{
			cli.StringSliceFlag{
				Name:  paramFlagName + ", p",
				Usage: "query parameter as key=value, repeatable",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			route, err := openRoute(c)
			if err != nil {
				return err
			}
			q, err := parseParams(c.StringSlice(paramFlagName))
			if err != nil {
				return err
			}
			n, err := route.Untyped.Count(ctx, q)
			if err != nil {
				return err
			}
			fmt.Println(humanize.Comma(int64(n)))
			return nil
		},
	}
}

func fieldsCommand() cli.Command {
	return cli.Command{
		Name:      "fields",
		Usage:     "list the fields documents of a route may carry",
		ArgsUsage: "<route>",
		Action: func(c *cli.Context) error {
			route, err := openRoute(c)
			if err != nil {
				return err
			}
			t := tabby.New()
			t.AddHeader("Field", "Key")
			for _, f := range route.Fields {
				key := ""
				if f == route.Key {
					key = "*"
				}
				t.AddLine(f, key)
			}
			t.Print()
			return nil
		},
	}
}

func routesCommand() cli.Command {
	return cli.Command{
		Name:  "routes",
		Usage: "list the API routes known to the client",
		Action: func(c *cli.Context) error {
			m, err := newMPRester(c)
			if err != nil {
				return err
			}
			t := tabby.New()
			t.AddHeader("Route", "Primary key", "Fields")
			for _, s := range m.Routes() {
				r, _ := m.Route(s)
				t.AddLine(s, r.Key, humanize.Comma(int64(len(r.Fields))))
			}
			t.Print()
			return nil
		},
	}
}

func versionCommand() cli.Command {
	return cli.Command{
		Name:  "db-version",
		Usage: "print the database version served by the API",
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			m, err := newMPRester(c)
			if err != nil {
				return err
			}
			v, err := m.GetDatabaseVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}

func settingsCommand() cli.Command {
	return cli.Command{
		Name:  "settings",
		Usage: "read or write ~/.pmgrc.yaml",
		Subcommands: []cli.Command{
			{
				Name:  "get",
				Usage: "print the client settings",
				Action: func(c *cli.Context) error {
					path, err := mpapi.SettingsPath()
					if err != nil {
						return err
					}
					s, err := mpapi.LoadSettings(path)
					if err != nil {
						return err
					}
					t := tabby.New()
					t.AddHeader("Key", "Value")
					t.AddLine(mpapi.SettingAPIKey, maskKey(s.APIKey))
					t.AddLine(mpapi.SettingEndpoint, s.Endpoint)
					extra := make([]string, 0, len(s.Extra))
					for k := range s.Extra {
						extra = append(extra, k)
					}
					sort.Strings(extra)
					for _, k := range extra {
						t.AddLine(k, fmt.Sprint(s.Extra[k]))
					}
					fmt.Println(path)
					t.Print()
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "store a setting, e.g. PMG_MAPI_KEY <key>",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("expected <key> <value>")
					}
					path, err := mpapi.SettingsPath()
					if err != nil {
						return err
					}
					return mpapi.SaveSetting(path, c.Args().Get(0), c.Args().Get(1))
				},
			},
		},
	}
}

func chgcarCommand() cli.Command {
	return cli.Command{
		Name:  "chgcar",
		Usage: "work with stored charge densities",
		Subcommands: []cli.Command{
			{
				Name:      "download",
				Usage:     "download the charge densities of tasks",
				ArgsUsage: "<task_id>...",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  dirFlagName,
						Usage: "directory to write <task_id>.json.gz files to",
						Value: ".",
					},
					cli.BoolFlag{
						Name:  noCompressFlagName,
						Usage: "write plain JSON",
					},
				},
				Action: func(c *cli.Context) error {
					ctx, cancel := signalContext()
					defer cancel()

					if c.NArg() == 0 {
						return fmt.Errorf("expected at least one task id")
					}
					m, err := newMPRester(c)
					if err != nil {
						return err
					}
					n, err := m.ChargeDensity.DownloadForTaskIDs(ctx, c.String(dirFlagName), c.Args(), !c.Bool(noCompressFlagName))
					if err != nil {
						return err
					}
					fmt.Printf("downloaded %s of %s charge densities to %s\n",
						humanize.Comma(int64(n)), humanize.Comma(int64(c.NArg())), c.String(dirFlagName))
					return nil
				},
			},
		},
	}
}

func newMPRester(c *cli.Context) (*mpapi.MPRester, error) {
	level := c.GlobalString(logLevelFlagName)
	logger, err := logpkg.NewLogger("cli", level)
	if err != nil {
		return nil, err
	}
	opts := []mpapi.Option{mpapi.WithLogger(logger)}
	if key := c.GlobalString(apiKeyFlagName); key != "" {
		opts = append(opts, mpapi.WithAPIKey(key))
	}
	if ep := c.GlobalString(endpointFlagName); ep != "" {
		opts = append(opts, mpapi.WithEndpoint(ep))
	}
	m, err := mpapi.NewMPRester(opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("client ready", zap.String("endpoint", m.Client().Endpoint()))
	return m, nil
}

func openRoute(c *cli.Context) (mpapi.Route, error) {
	if c.NArg() == 0 {
		return mpapi.Route{}, fmt.Errorf("expected a route, see `mpquery routes`")
	}
	m, err := newMPRester(c)
	if err != nil {
		return mpapi.Route{}, err
	}
	route, ok := m.Route(c.Args().First())
	if !ok {
		return mpapi.Route{}, fmt.Errorf("unknown route %q", c.Args().First())
	}
	return route, nil
}

// parseParams turns key=value pairs into a query. Repeated keys are joined
// into a list.
func parseParams(pairs []string) (mpapi.Query, error) {
	q := mpapi.Query{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		switch prev := q[k].(type) {
		case nil:
			q[k] = v
		case string:
			q[k] = []string{prev, v}
		case []string:
			q[k] = append(prev, v)
		}
	}
	return q, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(columns []string, docs []mpapi.Document) {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t := tabby.New()
	t.AddHeader(header...)
	for _, d := range docs {
		line := make([]any, len(columns))
		for i, c := range columns {
			line[i] = cell(d[c])
		}
		t.AddLine(line...)
	}
	t.Print()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return humanize.FtoaWithDigits(x, 4)
	case map[string]any, []any:
		raw, _ := json.Marshal(x)
		if len(raw) > 60 {
			return string(raw[:57]) + "..."
		}
		return string(raw)
	default:
		return fmt.Sprint(x)
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
