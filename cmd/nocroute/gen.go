package main

import (
	"fmt"

	"github.com/iti/nocroute"
	"github.com/spf13/cobra"
)

var (
	genOut       string
	genRows      int
	genCols      int
	genSide      int
	genRouters   int
	genEndpoints int
	genVNets     int
	genVCs       int
	genAlgorithm string
	genPattern   string
	genBudget    float64
)

var genCmd = &cobra.Command{
	Use:     "gen",
	Short:   "Generates a network description",
	GroupID: "desc",
}

var genMeshCmd = &cobra.Command{
	Use:   "mesh <name>",
	Short: "Generates a 2-D mesh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := genOptions()
		if err != nil {
			return err
		}
		nd, err := nocroute.GenerateMesh(args[0], genRows, genCols, endpointCount(genRows*genCols), opts...)
		if err != nil {
			return err
		}
		return writeDesc(cmd, nd)
	},
}

var genRingCmd = &cobra.Command{
	Use:   "ring <name>",
	Short: "Generates a bidirectional ring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := genOptions()
		if err != nil {
			return err
		}
		nd, err := nocroute.GenerateRing(args[0], genRouters, endpointCount(genRouters), opts...)
		if err != nil {
			return err
		}
		return writeDesc(cmd, nd)
	},
}

var genCubeCmd = &cobra.Command{
	Use:   "cube <name>",
	Short: "Generates a 3-D cube",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := genOptions()
		if err != nil {
			return err
		}
		nd, err := nocroute.GenerateCubeXYZ(args[0], genSide, endpointCount(genSide*genSide*genSide), opts...)
		if err != nil {
			return err
		}
		return writeDesc(cmd, nd)
	},
}

var genLongRangeCmd = &cobra.Command{
	Use:   "longrange <name>",
	Short: "Generates a mesh with express links placed for a traffic pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		opts, err := genOptions()
		if err != nil {
			return err
		}
		traffic, err := nocroute.SyntheticTraffic(genPattern, genRows, genCols)
		if err != nil {
			return err
		}
		links := nocroute.PlanLongLinks(traffic, genRows, genCols, genBudget)
		base, reduced := nocroute.ExpectedHops(traffic, genCols, links)
		logger.Info("express links planned", "pattern", genPattern, "links", len(links),
			"hops", base, "reduced", reduced)

		nd, err := nocroute.GenerateMeshLongRange(args[0], genRows, genCols, endpointCount(genRows*genCols),
			links, opts...)
		if err != nil {
			return err
		}
		return writeDesc(cmd, nd)
	},
}

func genOptions() ([]nocroute.GenOption, error) {
	alg, err := nocroute.ParseRoutingAlgorithm(genAlgorithm)
	if err != nil {
		return nil, err
	}
	return []nocroute.GenOption{nocroute.WithVNets(genVNets), nocroute.WithVCsPerVNet(genVCs),
		nocroute.WithAlgorithm(alg)}, nil
}

// endpointCount defaults to one endpoint per router
func endpointCount(routers int) int {
	if genEndpoints > 0 {
		return genEndpoints
	}
	return routers
}

func writeDesc(cmd *cobra.Command, nd *nocroute.NetworkDesc) error {
	if genOut == "" {
		bytes, err := yamlBytes(nd)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(bytes))
		return nil
	}
	return nd.WriteToFile(genOut)
}

func init() {
	rootCmd.AddCommand(genCmd)
	genCmd.AddCommand(genMeshCmd, genRingCmd, genCubeCmd, genLongRangeCmd)

	genCmd.PersistentFlags().StringVarP(&genOut, "out", "o", "", "description file (.yaml or .json), stdout if empty")
	genCmd.PersistentFlags().IntVar(&genEndpoints, "endpoints", 0, "number of endpoints, one per router if 0")
	genCmd.PersistentFlags().IntVar(&genVNets, "vnets", 1, "number of virtual networks")
	genCmd.PersistentFlags().IntVar(&genVCs, "vcs", 1, "virtual channels per virtual network")
	genCmd.PersistentFlags().StringVar(&genAlgorithm, "algorithm", "table", "routing algorithm")

	for _, c := range []*cobra.Command{genMeshCmd, genLongRangeCmd} {
		c.Flags().IntVar(&genRows, "rows", 4, "mesh rows")
		c.Flags().IntVar(&genCols, "cols", 4, "mesh columns")
	}
	genRingCmd.Flags().IntVar(&genRouters, "routers", 8, "ring routers")
	genCubeCmd.Flags().IntVar(&genSide, "side", 3, "cube side")
	genLongRangeCmd.Flags().StringVar(&genPattern, "pattern", "uniform_random", "synthetic traffic pattern")
	genLongRangeCmd.Flags().Float64Var(&genBudget, "budget", 8, "total express wire length")
}
