package main

import (
	"fmt"
	"sort"

	"github.com/iti/nocroute"
	"github.com/spf13/cobra"
)

var (
	walkSrc     int
	walkDst     int
	walkVNet    int
	walkTrace   string
	walkPattern string
	walkProbes  int
	walkRate    float64
	walkDist    string
	walkLimit   float64
)

var walkCmd = &cobra.Command{
	Use:   "walk <desc>",
	Short: "Walks probe packets through the network and reports their paths",
	Long: `walk injects probes at endpoint ingresses and lets every router's routing unit forward them
to the destination egress.  With --pattern, --probes probes are drawn from a synthetic traffic
pattern and spaced by the --dist arrival process; otherwise one probe goes from --src to --dst.`,
	Args:    cobra.ExactArgs(1),
	GroupID: "route",
	RunE: func(cmd *cobra.Command, args []string) error {
		nw, err := buildNetwork(args[0])
		if err != nil {
			return err
		}
		tm := nocroute.CreateTraceManager(nw.Desc.Name, walkTrace != "")
		tm.NameNodes(nw.Topo.Space)
		pw := nw.Walker(tm, nocroute.NewTieBreakStream(nw.Desc.Name+".walk", seed))

		if walkPattern == "" {
			if _, err := pw.Launch(walkSrc, walkDst, walkVNet, 0); err != nil {
				return err
			}
		} else if err := launchPattern(nw, pw); err != nil {
			return err
		}

		results := pw.Run(walkLimit)
		ids := make([]int, 0, len(results))
		for id := range results {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		out := cmd.OutOrStdout()
		space := nw.Topo.Space
		for _, id := range ids {
			wr := results[id]
			names := make([]string, 0, len(wr.Path))
			for _, node := range wr.Path {
				names = append(names, space.Name(node))
			}
			status := "delivered"
			if wr.Err != nil {
				status = wr.Err.Error()
			}
			fmt.Fprintf(out, "probe %d ep%d->ep%d hops %d latency %g %v %s\n", id, wr.SrcEp, wr.DstEp, wr.Hops,
				wr.Latency, names, status)
		}
		if _, err := tm.WriteToFile(walkTrace); err != nil {
			return err
		}
		return nil
	},
}

// launchPattern schedules walkProbes probes between the first endpoints of routers drawn
// from the traffic pattern
func launchPattern(nw *nocroute.Network, pw *nocroute.ProbeWalker) error {
	traffic, err := nocroute.SyntheticTraffic(walkPattern, nw.Desc.Rows, nw.Desc.Cols)
	if err != nil {
		return err
	}
	if len(traffic) != nw.Desc.NumRouters {
		return fmt.Errorf("pattern %s covers %d routers, network has %d", walkPattern, len(traffic), nw.Desc.NumRouters)
	}
	draws := nocroute.NewTieBreakStream(nw.Desc.Name+".traffic", seed)
	arrivals, err := nocroute.CreateArrivalProcess(walkDist, walkRate, draws)
	if err != nil {
		return err
	}

	// the first endpoint attached to each router stands for it
	firstEp := make(map[int]int)
	for ep := nw.Desc.NumEndpoints - 1; ep >= 0; ep-- {
		firstEp[nw.Topo.EndpointRouter(ep)] = ep
	}

	at := 0.0
	for i := 0; i < walkProbes; i++ {
		srcRtr, dstRtr := traffic.Draw(draws.RandU01())
		if srcRtr == dstRtr {
			continue
		}
		at += arrivals.Next()
		if _, err := pw.Launch(firstEp[srcRtr], firstEp[dstRtr], walkVNet, at); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(walkCmd)
	walkCmd.Flags().IntVarP(&walkSrc, "src", "s", 0, "source endpoint")
	walkCmd.Flags().IntVarP(&walkDst, "dst", "d", 1, "destination endpoint")
	walkCmd.Flags().IntVar(&walkVNet, "vnet", 0, "virtual network")
	walkCmd.Flags().StringVar(&walkTrace, "trace", "", "write the hop trace to this file (.yaml or .json)")
	walkCmd.Flags().StringVar(&walkPattern, "pattern", "", "draw probes from this synthetic traffic pattern")
	walkCmd.Flags().IntVar(&walkProbes, "probes", 16, "number of probes drawn from the pattern")
	walkCmd.Flags().Float64Var(&walkRate, "rate", 1e8, "probe injection rate, per second")
	walkCmd.Flags().StringVar(&walkDist, "dist", "exponential", "inter-arrival distribution")
	walkCmd.Flags().Float64Var(&walkLimit, "limit", 1.0, "simulation time limit, seconds")
}
