package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wbrc/fpshamir"
	"github.com/wbrc/fpshamir/internal/logging"
)

type splitOptions struct {
	ioOptions
	recordOptions
	threshold int
	n         int
	hex       bool
}

func newSplitCmd(g *globalOptions) *cobra.Command {
	o := &splitOptions{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into shares",
		Example: `  seal split -i key.bin -s shares.txt -t 2 -n 3
  echo 00ff10 | seal split --hex -s shares.txt -t 2 -n 2 --field auto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.checkPassphrases(o.n); err != nil {
				return err
			}

			in, err := o.openInput(cmd)
			if err != nil {
				return err
			}
			defer in.Close()

			secret, err := o.readSecret(in)
			if err != nil {
				return err
			}

			d, err := g.dealer(len(secret))
			if err != nil {
				return err
			}

			set, err := d.SplitSet(o.threshold, o.n, secret)
			if err != nil {
				return fmt.Errorf("failed to split secret: %w", err)
			}

			sharesFile, err := os.Create(o.shares)
			if err != nil {
				return fmt.Errorf("failed to create shares file %s: %w", o.shares, err)
			}
			defer sharesFile.Close()

			return o.writeRecords(sharesFile, set)
		},
	}

	o.addInput(cmd, "file holding the secret (default stdin)")
	o.addShares(cmd, "file to write share records to")
	o.addPassphrases(cmd, "wrap share i under the i-th passphrase (repeat once per share)")
	o.addMode(cmd, "cipher for wrapped shares")
	cmd.Flags().IntVarP(&o.threshold, "threshold", "t", 0, "number of shares required to recover the secret")
	cmd.Flags().IntVarP(&o.n, "count", "n", 0, "number of shares to generate")
	cmd.Flags().BoolVar(&o.hex, "hex", false, "read the secret as hex")
	_ = cmd.MarkFlagRequired("threshold")
	_ = cmd.MarkFlagRequired("count")

	return cmd
}

func (o *splitOptions) readSecret(r io.Reader) ([]byte, error) {
	secret, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	if !o.hex {
		return secret, nil
	}

	secret, err = hex.DecodeString(string(bytes.TrimSpace(secret)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex secret: %w", err)
	}
	return secret, nil
}

type combineOptions struct {
	ioOptions
	recordOptions
	skipVerify bool
	hex        bool
}

func newCombineCmd(_ *globalOptions) *cobra.Command {
	o := &combineOptions{}

	cmd := &cobra.Command{
		Use:     "combine",
		Short:   "Recover a secret from shares",
		Example: `  seal combine -s shares.txt -o key.bin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sharesFile, err := os.Open(o.shares)
			if err != nil {
				return fmt.Errorf("failed to open shares file %s: %w", o.shares, err)
			}
			defer sharesFile.Close()

			set, err := o.readRecords(sharesFile)
			if err != nil {
				return err
			}

			d := &fpshamir.Dealer{SkipVerify: o.skipVerify}
			secret, err := d.CombineSet(set)
			if err != nil {
				return fmt.Errorf("failed to combine shares: %w", err)
			}

			out, err := o.createOutput(cmd)
			if err != nil {
				return err
			}
			defer out.Close()

			if o.hex {
				_, err = fmt.Fprintln(out, hex.EncodeToString(secret))
			} else {
				_, err = out.Write(secret)
			}
			if err != nil {
				return fmt.Errorf("failed to write secret: %w", err)
			}

			logging.Info("combined", logging.String("set", set.ID.String()), logging.Int("bytes", len(secret)))
			return nil
		},
	}

	o.addOutput(cmd, "file to write the secret to (default stdout)")
	o.addShares(cmd, "file to read share records from")
	o.addPassphrases(cmd, "passphrase for wrapped share records (repeatable)")
	cmd.Flags().BoolVar(&o.skipVerify, "skip-verify", false, "do not check shares beyond the threshold")
	cmd.Flags().BoolVar(&o.hex, "hex", false, "write the secret as hex")

	return cmd
}
