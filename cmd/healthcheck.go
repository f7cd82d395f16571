package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
	healthcheckTimeout time.Duration
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check the configuration and that the service answers",
	Long: `Check the health of nlp-playground by verifying:
  • Configuration loading and validation
  • Reachability of the configured service URL

This command is useful for debugging connection issues before a workspace session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 NLP Playground Health Check"))
		fmt.Fprintln(out)

		// Step 1: configuration was loaded by the root command
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		fmt.Fprintln(out, successStyle.Render("✅ Configuration valid"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Service URL: %s\n", cfg.ServiceURL)
			fmt.Fprintf(out, "   Request timeout: %s\n", cfg.RequestTimeout)
			fmt.Fprintf(out, "   Hyperparameters: %v\n", cfg.Hyperparameters)
			fmt.Fprintf(out, "   Transcript archive: %s\n", cfg.ArchivePath)
		}
		fmt.Fprintln(out)

		// Step 2: reach the service
		fmt.Fprintln(out, infoStyle.Render("Step 2: Contacting the service..."))
		ctx, cancel := context.WithTimeout(cmd.Context(), healthcheckTimeout)
		defer cancel()
		start := time.Now()
		if err := newService().Ping(ctx); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Service unreachable:"), err)
			for _, hint := range errors.GetAllHints(err) {
				fmt.Fprintf(out, "   %s\n", hint)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return errors.Newf("health check failed: %s is not reachable", cfg.ServiceURL)
		}
		elapsed := time.Since(start)
		fmt.Fprintln(out, successStyle.Render("✅ Service answered"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Round trip: %s\n", elapsed.Round(time.Millisecond))
		}
		if elapsed > healthcheckTimeout/2 {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Service is slow to answer"))
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Service: %s", cfg.ServiceURL)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 5*time.Second, "How long to wait for the service")
}
