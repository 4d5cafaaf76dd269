package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	pathSrc  int
	pathDst  int
	pathVNet int
)

var pathCmd = &cobra.Command{
	Use:     "path <desc>",
	Short:   "Prints a minimum-weight node path between two endpoints",
	Args:    cobra.ExactArgs(1),
	GroupID: "route",
	RunE: func(cmd *cobra.Command, args []string) error {
		nw, err := buildNetwork(args[0])
		if err != nil {
			return err
		}
		if pathVNet < 0 || pathVNet >= nw.Topo.NumVNets {
			return fmt.Errorf("vnet %d out of range", pathVNet)
		}
		space := nw.Topo.Space
		for _, ep := range []int{pathSrc, pathDst} {
			if ep < 0 || ep >= space.NumEndpoints {
				return fmt.Errorf("endpoint %d out of range", ep)
			}
		}
		nodes, weight := nw.Topo.ShortestNodePath(pathVNet, space.Ingress(pathSrc), space.Egress(pathDst))
		if len(nodes) == 0 {
			return fmt.Errorf("ep%d cannot reach ep%d in vnet %d", pathSrc, pathDst, pathVNet)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (weight %d)\n", nw.Topo.ShowPath(pathVNet, pathSrc, pathDst), weight)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.Flags().IntVarP(&pathSrc, "src", "s", 0, "source endpoint")
	pathCmd.Flags().IntVarP(&pathDst, "dst", "d", 1, "destination endpoint")
	pathCmd.Flags().IntVar(&pathVNet, "vnet", 0, "virtual network")
}
