package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/bfm"
	"github.com/Yushi-Xing/axi-pipeline/monitoring"
	"github.com/Yushi-Xing/axi-pipeline/trace"
)

var runFlags struct {
	depth       int
	dataWidth   int
	idWidth     int
	addrWidth   int
	writes      int
	reads       int
	readyPct    int
	respPct     int
	seed        int64
	tickLimit   uint64
	tracePath   string
	monitorPort int
	openBrowser bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run randomized traffic through a bus retimer.",
	Run: func(cmd *cobra.Command, args []string) {
		runSimulation()
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runFlags.depth, "depth", 2, "pipeline depth of every channel")
	f.IntVar(&runFlags.dataWidth, "data-width", 64, "data bus width in bits")
	f.IntVar(&runFlags.idWidth, "id-width", 4, "transaction id width in bits")
	f.IntVar(&runFlags.addrWidth, "addr-width", 64, "address width in bits")
	f.IntVar(&runFlags.writes, "writes", 100, "write transactions to issue")
	f.IntVar(&runFlags.reads, "reads", 100, "read transactions to issue")
	f.IntVar(&runFlags.readyPct, "ready-percent", 75,
		"responder request-channel ready duty cycle")
	f.IntVar(&runFlags.respPct, "resp-ready-percent", 75,
		"requester response-channel ready duty cycle")
	f.Int64Var(&runFlags.seed, "seed", 1, "random seed")
	f.Uint64Var(&runFlags.tickLimit, "tick-limit", 10_000_000,
		"abort if traffic has not drained after this many ticks")
	f.StringVar(&runFlags.tracePath, "trace", "",
		"record transfers into this SQLite database")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"serve monitoring endpoints on this port (0 disables)")
	f.BoolVar(&runFlags.openBrowser, "open-browser", false,
		"open the monitoring page in the system browser")

	rootCmd.AddCommand(runCmd)
}

func runSimulation() {
	cfg := axi.DefaultConfig()
	cfg.DataWidth = runFlags.dataWidth
	cfg.IDWidth = runFlags.idWidth
	cfg.AddrWidth = runFlags.addrWidth

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid bus configuration: %s\n", err)
		atexit.Exit(1)
	}

	h := bfm.MakeHarnessBuilder().
		WithDepth(runFlags.depth).
		WithConfig(cfg).
		WithTraffic(runFlags.writes, runFlags.reads).
		WithReadyPercent(runFlags.readyPct).
		WithRespReadyPercent(runFlags.respPct).
		WithTickLimit(runFlags.tickLimit).
		WithSeed(runFlags.seed).
		Build("TB")

	if runFlags.tracePath != "" {
		recorder := trace.New(runFlags.tracePath)
		trace.CreateTransferTable(recorder)

		for _, ch := range []axi.Channel{
			axi.ChannelAW, axi.ChannelW, axi.ChannelB,
			axi.ChannelAR, axi.ChannelR,
		} {
			h.Checker(ch).AcceptHook(
				trace.NewTransferHook(recorder, ch.String()))
		}
	}

	if runFlags.monitorPort != 0 {
		monitor := monitoring.NewMonitor().
			WithPortNumber(runFlags.monitorPort)
		for _, p := range h.Retimer().Pipelines() {
			monitor.RegisterPipeline(p)
		}
		monitor.StartServer(runFlags.openBrowser)
	}

	stats := h.Run()

	fmt.Printf("Completed %d writes and %d reads in %d ticks\n",
		stats.CompletedWrites, stats.CompletedReads, stats.Ticks)
	for _, ch := range []axi.Channel{
		axi.ChannelAW, axi.ChannelW, axi.ChannelB,
		axi.ChannelAR, axi.ChannelR,
	} {
		fmt.Printf("  %-2s transfers: %d\n", ch, stats.Transfers[ch])
	}

	atexit.Exit(0)
}
