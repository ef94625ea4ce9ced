package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eups-manifest/internal/app"
)

type generateOptions struct {
	BaseDir  string
	Output   string
	Flavor   string
	Packages []string
	Workers  int
	Strict   bool
}

func newGenerateCommand() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render manifests for many packages into a static tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(cmd, map[string]string{
				"base_dir": "base-dir",
				"output":   "output",
				"workers":  "workers",
				"strict":   "strict",
			})
			return runGenerate(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.BaseDir, "base-dir", ".", "Repository base directory")
	cmd.Flags().StringVar(&opts.Output, "output", "out", "Output directory")
	cmd.Flags().StringVar(&opts.Flavor, "flavor", "", "Flavor to resolve for")
	cmd.Flags().StringSliceVar(&opts.Packages, "package", nil, "Packages to generate as NAME or NAME=VERSION (default: every current package)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Number of manifests resolved in parallel")
	cmd.Flags().BoolVar(&opts.Strict, "strict", true, "Abort a manifest on syntax and version errors")
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, opts generateOptions) error {
	service := newAppService()
	result, err := service.Generate(ctx, app.GenerateRequest{
		BaseDir:   resolveString(cmd, opts.BaseDir, "base_dir", "base-dir"),
		OutputDir: resolveString(cmd, opts.Output, "output", "output"),
		Flavor:    opts.Flavor,
		Packages:  resolveStrings(cmd, opts.Packages, "packages", "package"),
		Workers:   resolveInt(cmd, opts.Workers, "workers", "workers"),
		Strict:    resolveBool(cmd, opts.Strict, "strict", "strict"),
	})
	if result.ReportPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "generated: %d written, %d failed\nreport: %s\n", result.Written, result.Failed, result.ReportPath)
	}
	return err
}
