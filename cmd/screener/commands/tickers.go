package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Print the resolved universe",
	RunE: func(cmd *cobra.Command, args []string) error {
		src := newUniverse(cfg)
		instruments, err := src.Instruments(cmd.Context())
		if err != nil {
			return fmt.Errorf("resolve universe from %s: %w", src.Name(), err)
		}
		for _, in := range instruments {
			fmt.Printf("%-14s %s\n", in.Symbol, in.Name)
		}
		fmt.Printf("%d instruments\n", len(instruments))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tickersCmd)
}
