package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "biokey",
		Short: "Derive a cancellable biometric key from a fingerprint image",
		Long: `biokey derives a 256-bit key from a fingerprint image, a PIN and three
auxiliary secrets.

The image is sharpened, binarized, turned into a ridge matrix and scrambled
with a clock-seeded cancellable transform. Independently, the PIN is
encrypted through three chained Triple-DES stages and the last ciphertext is
hashed with SHA-256 into the final key. All intermediate artifacts are written
to <output_root>/<image-name>/.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newDeriveCmd(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "biokey %s\n", version)
		},
	})
	return cmd
}
