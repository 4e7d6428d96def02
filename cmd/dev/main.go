package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fairlens/app"
	"fairlens/domain/audit"
	"fairlens/domain/core"
	"fairlens/domain/schema"
	"fairlens/internal/config"
	"fairlens/internal/testkit"
	"fairlens/ui"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fairlens-dev",
		Short: "Fairlens development tools",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newAuditCmd(),
		newDeterminismCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// syntheticService wires the full pipeline against generated rows, so the
// dev commands need neither network nor a database.
func syntheticService(rows int) *app.AuditService {
	kit := testkit.NewKit()
	pipeline := config.PipelineConfig{
		Seed:         config.DefaultSeed,
		TestFraction: config.DefaultTestFraction,
		MinRows:      config.DefaultMinRows,
		TrimOutliers: true,
	}
	models := config.ModelConfig{
		EnsembleTreeCount:            config.DefaultTreeCount,
		EnsembleMaxDepth:             config.DefaultMaxDepth,
		LinearRegularizationStrength: config.DefaultLinearC,
	}
	return app.NewAuditService(kit.TableSource(rows), kit.RunRepository(), schema.Adult(), pipeline, models)
}

func newServeCmd() *cobra.Command {
	var rows int
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the audit server against synthetic data",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := ui.NewServer(syntheticService(rows), gin.DebugMode)
			return server.Start(":" + port)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 2000, "synthetic row count")
	cmd.Flags().StringVar(&port, "port", "8080", "listen port")
	return cmd
}

func newAuditCmd() *cobra.Command {
	var rows int
	var seed int64
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run one audit against synthetic data and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := syntheticService(rows)
			run, err := svc.Run(cmd.Context(), app.RunRequest{Seed: &seed})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 2000, "synthetic row count")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "split and training seed")
	return cmd
}

func newDeterminismCmd() *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Audit the same synthetic table twice from fresh state and compare",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.Context(), rows)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 2000, "synthetic row count")
	return cmd
}

func testDeterminism(ctx context.Context, rows int) error {
	fmt.Println("Running the audit twice from fresh state...")

	first, err := syntheticService(rows).Run(ctx, app.RunRequest{})
	if err != nil {
		return fmt.Errorf("first run failed: %w", err)
	}
	second, err := syntheticService(rows).Run(ctx, app.RunRequest{})
	if err != nil {
		return fmt.Errorf("second run failed: %w", err)
	}

	if first.Fingerprint != second.Fingerprint {
		return fmt.Errorf("dataset fingerprints differ: %s vs %s", first.Fingerprint, second.Fingerprint)
	}
	if err := compareReports(first.Reports, second.Reports); err != nil {
		return fmt.Errorf("determinism test failed: %w", err)
	}

	fmt.Println("✓ Determinism test passed, results identical")
	return nil
}

// compareReports checks metric-for-metric equality. Timestamps are the one
// field allowed to differ between runs.
func compareReports(first, second []audit.Report) error {
	if len(first) != len(second) {
		return fmt.Errorf("report counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		a.CreatedAt, b.CreatedAt = core.Timestamp{}, core.Timestamp{}

		aJSON, err := json.Marshal(a)
		if err != nil {
			return err
		}
		bJSON, err := json.Marshal(b)
		if err != nil {
			return err
		}
		if !bytes.Equal(aJSON, bJSON) {
			return fmt.Errorf("report %d (%s) differs between runs", i, a.Family)
		}
	}
	return nil
}
