// Command kvs-client is the thin TCP client for kvs-server, speaking the
// wire protocol in internal/wire. Exit codes follow spec.md §6: 0 success,
// 1 for `rm` on a missing key, 2 for transport failures.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/ignitedb/ignite/internal/wire"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/spf13/cobra"
)

func main() {
	var addr string

	root := &cobra.Command{Use: "kvs-client", Short: "Talk to an ignite kvs-server instance"}
	root.PersistentFlags().StringVar(&addr, "addr", options.DefaultListenAddr, "IP:PORT of the kvs-server instance")

	root.AddCommand(
		setCmd(&addr),
		getCmd(&addr),
		rmCmd(&addr),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func setCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a key to a value",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			resp := call(*addr, wire.Command{Kind: wire.CommandSet, Key: args[0], Value: args[1]})
			if resp.Kind == wire.ResponseError {
				fmt.Fprintln(os.Stderr, describeError(resp.Error))
				os.Exit(1)
			}
		},
	}
}

func getCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get the value of a key",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp := call(*addr, wire.Command{Kind: wire.CommandGet, Key: args[0]})
			switch resp.Kind {
			case wire.ResponseValue:
				fmt.Println(resp.Value)
			case wire.ResponseError:
				if resp.Error == wire.ErrorNotFound {
					fmt.Println("Key not found")
					return
				}
				fmt.Fprintln(os.Stderr, describeError(resp.Error))
				os.Exit(1)
			}
		},
	}
}

func rmCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp := call(*addr, wire.Command{Kind: wire.CommandRemove, Key: args[0]})
			if resp.Kind == wire.ResponseError {
				if resp.Error == wire.ErrorNotFound {
					fmt.Println("Key not found")
				} else {
					fmt.Fprintln(os.Stderr, describeError(resp.Error))
				}
				os.Exit(1)
			}
		},
	}
}

// call opens one connection, sends cmd, and returns the server's response,
// per the one-request-per-connection model of spec.md §4.6.
func call(addr string, cmd wire.Command) wire.Response {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to %s: %v\n", addr, err)
		os.Exit(2)
	}
	defer conn.Close()

	if err := wire.WriteCommand(conn, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to send command: %v\n", err)
		os.Exit(2)
	}

	resp, err := wire.ReadResponse(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read response: %v\n", err)
		os.Exit(2)
	}

	return resp
}

func describeError(kind wire.ErrorKind) string {
	switch kind {
	case wire.ErrorInvalidCommand:
		return "invalid command"
	default:
		return "server error"
	}
}
