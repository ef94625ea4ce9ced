package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eups-manifest/internal/server"
)

type serveOptions struct {
	Listen       string
	StackRoot    string
	DefaultStack string
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve manifests over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(cmd, map[string]string{
				"listen":        "listen",
				"stack_root":    "stack-root",
				"default_stack": "default-stack",
			})
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Listen, "listen", server.DefaultListen, "Listen address")
	cmd.Flags().StringVar(&opts.StackRoot, "stack-root", ".", "Directory holding one sub-directory per stack")
	cmd.Flags().StringVar(&opts.DefaultStack, "default-stack", "current", "Stack used when the request path names none")
	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(newAppService(), server.Config{
		Listen:       resolveString(cmd, opts.Listen, "listen", "listen"),
		StackRoot:    resolveString(cmd, opts.StackRoot, "stack_root", "stack-root"),
		DefaultStack: resolveString(cmd, opts.DefaultStack, "default_stack", "default-stack"),
	})
	return srv.ListenAndServe(ctx)
}
