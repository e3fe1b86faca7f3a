// Command nesium is the core's minimal test/inspection CLI: run a ROM
// headlessly for N frames, inspect a cartridge header, or dump NMI/APU
// traces, without linking any GUI toolkit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mikai233/nesium-sub003/internal/config"
	"github.com/mikai233/nesium-sub003/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:     "nesium [rom]",
		Short:   "A cycle-accurate NES/Famicom emulator core test tool",
		Version: version.GetVersion(),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAction(cmd, args, v)
		},
	}

	config.BindFlags(root.PersistentFlags())
	bindRunFlags(root.Flags())
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(newRunCmd(v))
	root.AddCommand(newInspectCmd())
	root.AddCommand(newTraceCmd(v))

	return root
}
