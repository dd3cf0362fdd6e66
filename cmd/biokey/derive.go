package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cancellable-biokey/internal/config"
	"cancellable-biokey/internal/core"
	bioio "cancellable-biokey/internal/io"
)

type deriveOptions struct {
	pin         string
	keys        [3]string
	outputRoot  string
	persistSeed bool
	prompt      bool
}

func newDeriveCmd(root *rootOptions) *cobra.Command {
	opts := &deriveOptions{}

	cmd := &cobra.Command{
		Use:   "derive <image>",
		Short: "Run the full pipeline on one fingerprint image",
		Long: `Run the full pipeline on one fingerprint image and print the derived key.

Accepted image types: jpg, jpeg, png, bmp.

Secrets can be given as flags or, with --prompt, typed at a no-echo terminal
prompt. Empty secrets are accepted and produce a deterministic but weak key.

Examples:
  biokey derive thumb.png --pin 1234 --key1 a --key2 b --key3 c
  biokey derive --prompt --persist-seed scans/index.bmp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.pin, "pin", "", "Numeric PIN")
	cmd.Flags().StringVar(&opts.keys[0], "key1", "", "First auxiliary key string")
	cmd.Flags().StringVar(&opts.keys[1], "key2", "", "Second auxiliary key string")
	cmd.Flags().StringVar(&opts.keys[2], "key3", "", "Third auxiliary key string")
	cmd.Flags().StringVar(&opts.outputRoot, "output-root", "", "Artifact root directory (overrides config)")
	cmd.Flags().BoolVar(&opts.persistSeed, "persist-seed", false, "Write the transform seed next to the artifacts")
	cmd.Flags().BoolVar(&opts.prompt, "prompt", false, "Read PIN and keys from the terminal without echo")
	return cmd
}

func runDerive(cmd *cobra.Command, root *rootOptions, opts *deriveOptions, imagePath string) error {
	if !bioio.IsSupportedFormat(imagePath) {
		return fmt.Errorf("%w: %s (accepted: %s)", bioio.ErrUnsupportedFormat, imagePath, strings.Join(bioio.SupportedExtensions(), ", "))
	}

	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}
	if opts.outputRoot != "" {
		cfg.OutputRoot = opts.outputRoot
	}
	if cmd.Flags().Changed("persist-seed") {
		cfg.PersistSeed = opts.persistSeed
	}

	if opts.prompt {
		if err := promptSecrets(cmd.InOrStdin(), cmd.ErrOrStderr(), opts); err != nil {
			return err
		}
	}

	logger := cfg.NewLogger(root.debug)
	logger.SetOutput(cmd.ErrOrStderr())

	pipeline := core.NewPipeline(cfg, logger)
	res, err := pipeline.Process(cmd.Context(), core.Request{
		ImagePath: imagePath,
		PIN:       opts.pin,
		Key1:      opts.keys[0],
		Key2:      opts.keys[1],
		Key3:      opts.keys[2],
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated Hash Key: %s\n", res.Key.Hex())
	fmt.Fprintf(out, "Artifacts: %s\n", res.OutputDir)
	return nil
}

// promptSecrets reads the PIN and keys from in. Terminal input is not echoed.
func promptSecrets(in io.Reader, prompt io.Writer, opts *deriveOptions) error {
	labels := []string{"Enter Numeric PIN: ", "Enter Key 1: ", "Enter Key 2: ", "Enter Key 3: "}
	targets := []*string{&opts.pin, &opts.keys[0], &opts.keys[1], &opts.keys[2]}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		for i, label := range labels {
			fmt.Fprint(prompt, label)
			value, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompt)
			if err != nil {
				return fmt.Errorf("read secret: %w", err)
			}
			*targets[i] = string(value)
		}
		return nil
	}

	reader := bufio.NewReader(in)
	for i, label := range labels {
		fmt.Fprint(prompt, label)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read secret: %w", err)
		}
		*targets[i] = strings.TrimRight(line, "\r\n")
	}
	return nil
}
