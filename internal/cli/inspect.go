package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"eups-manifest/internal/app"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a rendered manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, path string) error {
	service := newAppService()
	result, err := service.Inspect(app.InspectRequest{Path: path})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "manifest: %s %s\n", result.Identity.Name, result.Identity.Version)
	fmt.Fprintf(out, "records: %d\n", len(result.Records))
	flavors := make([]string, 0, len(result.Flavors))
	for flavor := range result.Flavors {
		flavors = append(flavors, flavor)
	}
	sort.Strings(flavors)
	for _, flavor := range flavors {
		fmt.Fprintf(out, "- %s: %d\n", flavor, result.Flavors[flavor])
	}
	fmt.Fprintf(out, "comments: %d\n", len(result.Comments))
	for _, comment := range result.Comments {
		fmt.Fprintf(out, "- %s\n", comment)
	}
	return nil
}
