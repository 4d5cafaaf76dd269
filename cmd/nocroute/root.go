package main

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logPath  string
	seed     int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nocroute",
	Short: "Network-on-chip routing table compiler",
	Long: `nocroute compiles the routing tables of an on-chip interconnect from its link description,
and answers the per-router routing queries of table, dimension-order and adaptive routing.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "desc",
		Title: "Network Descriptions",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "route",
		Title: "Routing Commands",
	})
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "", "also write the log to this file")
	rootCmd.PersistentFlags().IntVar(&seed, "seed", 0, "seed of the tie-break random streams")
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// newLogger writes colored records to stderr and, with --log-file, plain text records
// to the file
func newLogger() (*slog.Logger, error) {
	level, err := parseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: "nocroute",
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}
