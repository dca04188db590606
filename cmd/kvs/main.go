// Command kvs is the embedded CLI: it operates on the current working
// directory directly, with no network hop, per spec.md §6.
package main

import (
	"context"
	"fmt"
	"os"

	igniteerrors "github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/ignite"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "kvs", Short: "Operate on an ignite store in the current directory"}

	root.AddCommand(setCmd(), getCmd(), rmCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open(ctx context.Context) *ignite.Instance {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		os.Exit(1)
	}

	inst, err := ignite.NewInstance(ctx, "kvs", options.WithDataDir(cwd))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}

	return inst
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a key to a value",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			inst := open(ctx)
			defer inst.Close(ctx)

			if err := inst.Set(ctx, args[0], args[1]); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get the value of a key",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			inst := open(ctx)
			defer inst.Close(ctx)

			value, ok, err := inst.Get(ctx, args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if !ok {
				fmt.Println("Key not found")
				return
			}
			fmt.Println(value)
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			inst := open(ctx)
			defer inst.Close(ctx)

			if err := inst.Delete(ctx, args[0]); err != nil {
				if igniteerrors.IsNotFound(err) {
					fmt.Println("Key not found")
				} else {
					fmt.Fprintln(os.Stderr, err)
				}
				os.Exit(1)
			}
		},
	}
}
