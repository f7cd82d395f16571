package cmd

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iksnae/nlp-playground/internal/fakeservice"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// resetFlags returns every flag of c and its subcommands to its default so
// one test's arguments do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// startService serves a fresh fake backend for one test.
func startService(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(fakeservice.New(fakeservice.Config{ChunkSize: 200}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// archiveFlag points the transcript archive into the test's temp dir.
func archiveFlag(t *testing.T) (string, string) {
	t.Helper()
	return "--archive", filepath.Join(t.TempDir(), "transcripts.db")
}
