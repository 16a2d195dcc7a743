package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const banner = `
     _     ___   ____  _____
    / \   |_ _| / ___|| ____|
   / _ \   | | | |    |  _|
  / ___ \  | | | |___ | |___
 /_/   \_\|___| \____||_____|

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Sales Dashboard Client - Version %s\x1b[0m\n\n", Version)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aice %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
