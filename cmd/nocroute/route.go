package main

import (
	"fmt"

	"github.com/iti/nocroute"
	"github.com/spf13/cobra"
)

var (
	routeRouter   int
	routeEndpoint int
	routeVNet     int
	routeInDir    string
	routeInVC     int
	routeCount    int
)

var routeCmd = &cobra.Command{
	Use:     "route <desc>",
	Short:   "Asks one router where a packet goes next",
	Args:    cobra.ExactArgs(1),
	GroupID: "route",
	RunE: func(cmd *cobra.Command, args []string) error {
		nw, err := buildNetwork(args[0])
		if err != nil {
			return err
		}
		ru, err := nw.Unit(routeRouter)
		if err != nil {
			return err
		}
		inDir, err := nocroute.ParseDirection(routeInDir)
		if err != nil {
			return err
		}
		inport, present := ru.Inports().Index(inDir)
		if !present {
			return fmt.Errorf("router %d has no %s input port", routeRouter, inDir)
		}
		route, err := nw.RouteTo(routeVNet, routeRouter, routeEndpoint)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if nw.Params.Algorithm.Adaptive() {
			candidates, err := ru.SelectOutports(route, inport, inDir, routeInVC)
			if err != nil {
				return err
			}
			for _, c := range candidates {
				fmt.Fprintf(out, "outport %d (%s) vc %d\n", c.Outport, ru.Outports().Direction(c.Outport), c.VC)
			}
			return nil
		}
		for i := 0; i < routeCount; i++ {
			outport, err := ru.SelectOutport(route, inport, inDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "outport %d (%s)\n", outport, ru.Outports().Direction(outport))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().IntVarP(&routeRouter, "router", "r", 0, "router making the decision")
	routeCmd.Flags().IntVarP(&routeEndpoint, "endpoint", "e", 0, "destination endpoint")
	routeCmd.Flags().IntVar(&routeVNet, "vnet", 0, "virtual network")
	routeCmd.Flags().StringVar(&routeInDir, "indir", "Local", "direction of the input port")
	routeCmd.Flags().IntVar(&routeInVC, "invc", 0, "input virtual channel (adaptive routing)")
	routeCmd.Flags().IntVarP(&routeCount, "count", "n", 1, "number of repeated lookups")
}
