package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eups-manifest/internal/app"
)

type listOptions struct {
	BaseDir string
	Flavor  string
}

func newListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list [PKG]",
		Short: "List available directive files, oldest version first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlags(cmd, map[string]string{"base_dir": "base-dir"})
			pkg := ""
			if len(args) > 0 {
				pkg = args[0]
			}
			return runList(cmd.Context(), cmd, pkg, opts)
		},
	}
	cmd.Flags().StringVar(&opts.BaseDir, "base-dir", ".", "Repository base directory")
	cmd.Flags().StringVar(&opts.Flavor, "flavor", "", "Flavor directory to list")
	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, pkg string, opts listOptions) error {
	service := newAppService()
	result, err := service.List(ctx, app.ListRequest{
		BaseDir: resolveString(cmd, opts.BaseDir, "base_dir", "base-dir"),
		Package: pkg,
		Flavor:  opts.Flavor,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, ref := range result.Manifests {
		marker := ""
		if result.HasCurrent && ref.Version == result.Current.Version {
			marker = " (current)"
		}
		fmt.Fprintf(out, "%s %s %s%s\n", ref.Package, ref.Version, ref.Flavor, marker)
	}
	if len(result.Manifests) == 0 {
		fmt.Fprintln(out, "no directive files found")
	}
	return nil
}
