package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"eups-manifest/internal/app"
)

type resolveOptions struct {
	BaseDir string
	Flavor  string
	Output  string
	Strict  bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve PKG[-VERSION]",
		Short: "Resolve the manifest of one package and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(cmd, map[string]string{
				"base_dir": "base-dir",
				"strict":   "strict",
				"output":   "output",
			})
			return runResolve(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.BaseDir, "base-dir", ".", "Repository base directory")
	cmd.Flags().StringVar(&opts.Flavor, "flavor", "", "Flavor to resolve for")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the manifest to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.Strict, "strict", true, "Abort on syntax and version errors instead of recording comments")
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, target string, opts resolveOptions) error {
	pkg, version, _ := strings.Cut(strings.TrimSpace(target), "-")
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		BaseDir: resolveString(cmd, opts.BaseDir, "base_dir", "base-dir"),
		Package: pkg,
		Version: version,
		Flavor:  opts.Flavor,
		Strict:  resolveBool(cmd, opts.Strict, "strict", "strict"),
	})
	if err != nil {
		return err
	}

	output := resolveString(cmd, opts.Output, "output", "output")
	if output == "" {
		return result.Manifest.Print(cmd.OutOrStdout())
	}
	if err := os.WriteFile(output, []byte(result.Manifest.String()), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest").
			WithCause(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "manifest written: %s (%d records)\n", output, result.Records)
	return nil
}
