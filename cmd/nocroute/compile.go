package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/iti/nocroute"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var checkConn bool

var compileCmd = &cobra.Command{
	Use:     "compile <desc>",
	Short:   "Compiles a network description and prints every router's routing table",
	Args:    cobra.ExactArgs(1),
	GroupID: "route",
	RunE: func(cmd *cobra.Command, args []string) error {
		nw, err := buildNetwork(args[0])
		if err != nil {
			return err
		}
		for rtr := range nw.Units {
			printRouterTable(cmd.OutOrStdout(), nw, rtr)
		}
		return nil
	},
}

// buildNetwork reads and builds the description in filename with the global flags
func buildNetwork(filename string) (*nocroute.Network, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	opts := []nocroute.CompileOption{nocroute.WithLogger(logger)}
	if checkConn {
		opts = append(opts, nocroute.WithConnectivityCheck())
	}
	return nocroute.BuildNetworkFromFile(filename, seed, opts...)
}

func printRouterTable(w io.Writer, nw *nocroute.Network, rtr int) {
	space := nw.Topo.Space
	fmt.Fprintf(w, "%s\n", space.Name(space.Router(rtr)))
	for _, re := range nw.Topo.RouterEntries(rtr) {
		sets := make([]string, 0, len(re.Routes))
		for v, ds := range re.Routes {
			sets = append(sets, fmt.Sprintf("v%d:%s", v, ds))
		}
		fmt.Fprintf(w, "  %-10s -> %-8s w=%-3d %s\n", re.Link.SrcOutport, space.Name(re.Dst()), re.Link.Weight,
			strings.Join(sets, " "))
	}
}

func yamlBytes(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.PersistentFlags().BoolVar(&checkConn, "check", false, "fail when some endpoint cannot reach another")
}
