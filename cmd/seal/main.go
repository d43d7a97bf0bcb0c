package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wbrc/fpshamir"
	"github.com/wbrc/fpshamir/internal/logging"
)

type globalOptions struct {
	field   string
	verbose bool
	logJSON bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt files and split secrets with Shamir's Secret Sharing",
		Long: `seal encrypts a file with a random key and splits the key into shares
using Shamir's Secret Sharing over a prime field, such that any threshold
number of shares recover the key and fewer reveal nothing about it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.DefaultConfig()
			if opts.verbose {
				cfg.Level = "debug"
				cfg.Development = !opts.logJSON
			}
			cfg.JSON = opts.logJSON
			return logging.Init(cfg)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&opts.field, "field", "default", "prime field (see 'seal fields'), or 'auto' to size it to the secret")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&opts.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(
		newLockCmd(opts),
		newUnlockCmd(opts),
		newSplitCmd(opts),
		newCombineCmd(opts),
		newFieldsCmd(),
	)

	return root
}

func main() {
	err := execute(newRootCmd())
	_ = logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs root and logs a failure once.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if err != nil {
		logging.Error("command failed", logging.Err(err))
	}
	return err
}

// dealer returns a dealer over the field chosen with --field. "auto" picks the
// smallest predefined field holding a secret of secretLen bytes.
func (o *globalOptions) dealer(secretLen int) (*fpshamir.Dealer, error) {
	var (
		f   *fpshamir.Field
		err error
	)
	if o.field == "auto" {
		f, err = fpshamir.FieldFor(secretLen)
	} else {
		f, err = fpshamir.FieldByName(o.field)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug("using field", logging.String("field", f.String()), logging.Int("capacity", f.Capacity()))
	return &fpshamir.Dealer{F: f}, nil
}

type ioOptions struct {
	input  string
	output string
	shares string
}

func (o *ioOptions) addInput(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", usage)
}

func (o *ioOptions) addOutput(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", usage)
}

func (o *ioOptions) addShares(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVarP(&o.shares, "shares", "s", "", usage)
	_ = cmd.MarkFlagRequired("shares")
}

// openInput returns stdin for "" and "-", the named file otherwise.
func (o *ioOptions) openInput(cmd *cobra.Command) (io.ReadCloser, error) {
	if o.input == "" || o.input == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(o.input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", o.input, err)
	}
	return f, nil
}

// createOutput returns stdout for "" and "-", the named file otherwise.
func (o *ioOptions) createOutput(cmd *cobra.Command) (io.WriteCloser, error) {
	if o.output == "" || o.output == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(o.output)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", o.output, err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
