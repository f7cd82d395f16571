package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iksnae/nlp-playground/internal"
	"github.com/iksnae/nlp-playground/internal/fakeservice"
)

var fakeAddr string

var fakeServiceCmd = &cobra.Command{
	Use:   "fake-service",
	Short: "Serve a local stand-in for the NLP service",
	Long: `Start an in-memory server that speaks the playground service API with
simple deterministic heuristics instead of real models. Useful for trying the
client without the Python backend.

Example:
  nlp-playground fake-service --addr 127.0.0.1:8000
  nlp-playground --service-url http://127.0.0.1:8000 workspace -t sentiment`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.FakeService.Addr
		if cmd.Flags().Changed("addr") {
			addr = fakeAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := fakeservice.New(fakeservice.Config{
			ChunkSize:    cfg.FakeService.ChunkSize,
			ChunkOverlap: cfg.FakeService.ChunkOverlap,
			Logger:       internal.Logger(),
		})
		internal.PrintInfo("Fake service listening on " + addr + " (Ctrl+C to stop)")
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(fakeServiceCmd)
	fakeServiceCmd.Flags().StringVar(&fakeAddr, "addr", "", "Listen address (overrides fake_service.addr)")
}
