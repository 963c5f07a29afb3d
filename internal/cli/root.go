package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "logo",
	Short: "Turtle-graphics canvas server speaking a line-oriented text protocol",
	Long: `logo serves a character canvas over TCP. Every connection gets its own
canvas and a turtle-like cursor that it steers with commands such as
"steps 3", "right 2" or "eraser", and can ask for a framed text rendering
with "render".

Run "logo serve" to start the server and "logo client" to talk to it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("logo version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
