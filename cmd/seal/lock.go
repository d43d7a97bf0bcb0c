package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wbrc/fpshamir"
	"github.com/wbrc/fpshamir/internal/logging"
	"github.com/wbrc/fpshamir/wrap"
)

type lockOptions struct {
	ioOptions
	recordOptions
	threshold int
	n         int
}

func newLockCmd(g *globalOptions) *cobra.Command {
	o := &lockOptions{}

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Encrypt a file and split its key into shares",
		Example: `  seal lock -i archive.tar.gz -o archive.tar.gz.seal -s shares.txt -t 3 -n 5
  seal lock -i wallet.json -o wallet.seal -s shares.txt -t 2 -n 3 -p alice -p bob -p carol`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.checkPassphrases(o.n); err != nil {
				return err
			}

			m, err := wrap.ParseMode(o.mode)
			if err != nil {
				return err
			}

			d, err := g.dealer(m.KeySize())
			if err != nil {
				return err
			}

			key := make([]byte, m.KeySize())
			if _, err := io.ReadFull(rand.Reader, key); err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}

			set, err := d.SplitSet(o.threshold, o.n, key)
			if err != nil {
				return fmt.Errorf("failed to split key: %w", err)
			}

			in, err := o.openInput(cmd)
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := o.createOutput(cmd)
			if err != nil {
				return err
			}
			defer out.Close()

			sharesFile, err := os.Create(o.shares)
			if err != nil {
				return fmt.Errorf("failed to create shares file %s: %w", o.shares, err)
			}
			defer sharesFile.Close()

			return o.lock(m, key, set, in, out, sharesFile)
		},
	}

	o.addInput(cmd, "file to seal (default stdin)")
	o.addOutput(cmd, "file to write sealed data (default stdout)")
	o.addShares(cmd, "file to write share records to")
	o.addPassphrases(cmd, "wrap share i under the i-th passphrase (repeat once per share)")
	o.addMode(cmd, "cipher for data and wrapped shares")
	cmd.Flags().IntVarP(&o.threshold, "threshold", "t", 0, "number of shares required to unseal")
	cmd.Flags().IntVarP(&o.n, "count", "n", 0, "number of shares to generate")
	_ = cmd.MarkFlagRequired("threshold")
	_ = cmd.MarkFlagRequired("count")

	return cmd
}

func (o *lockOptions) lock(m wrap.Mode, key []byte, set *fpshamir.ShareSet, r io.Reader, w, sharesW io.Writer) error {
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read plaintext: %w", err)
	}

	ciphertext, err := wrap.SealKey(m, key, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}

	if _, err := w.Write(ciphertext); err != nil {
		return fmt.Errorf("failed to write ciphertext: %w", err)
	}

	logging.Info("sealed",
		logging.String("mode", string(m)),
		logging.Int("bytes", len(plaintext)),
		logging.String("set", set.ID.String()),
	)

	return o.writeRecords(sharesW, set)
}

type unlockOptions struct {
	ioOptions
	recordOptions
	skipVerify bool
}

func newUnlockCmd(g *globalOptions) *cobra.Command {
	o := &unlockOptions{}

	cmd := &cobra.Command{
		Use:     "unlock",
		Short:   "Recover the key from shares and decrypt a sealed file",
		Example: `  seal unlock -i archive.tar.gz.seal -o archive.tar.gz -s shares.txt -p alice -p carol`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := o.openInput(cmd)
			if err != nil {
				return err
			}
			defer in.Close()

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
			key, err := d.CombineSet(set)
			if err != nil {
				return fmt.Errorf("failed to combine shares: %w", err)
			}

			ciphertext, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read ciphertext: %w", err)
			}

			plaintext, err := wrap.OpenKey(key, ciphertext)
			if err != nil {
				return fmt.Errorf("failed to unseal: %w", err)
			}

			out, err := o.createOutput(cmd)
			if err != nil {
				return err
			}
			defer out.Close()

			if _, err := out.Write(plaintext); err != nil {
				return fmt.Errorf("failed to write plaintext: %w", err)
			}

			logging.Info("unsealed", logging.String("set", set.ID.String()), logging.Int("bytes", len(plaintext)))
			return nil
		},
	}

	o.addInput(cmd, "file to unseal (default stdin)")
	o.addOutput(cmd, "file to write unsealed data (default stdout)")
	o.addShares(cmd, "file to read share records from")
	o.addPassphrases(cmd, "passphrase for wrapped share records (repeatable)")
	cmd.Flags().BoolVar(&o.skipVerify, "skip-verify", false, "do not check shares beyond the threshold")

	return cmd
}
