package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wbrc/fpshamir"
	"github.com/wbrc/fpshamir/internal/logging"
	"github.com/wbrc/fpshamir/wrap"
)

// Argon2id parameters for passphrase-wrapped records.
var kdfParams = wrap.DefaultParams

const maxRecordLine = 4 << 20

type recordOptions struct {
	passphrases []string
	mode        string
}

func (o *recordOptions) addPassphrases(cmd *cobra.Command, usage string) {
	cmd.Flags().StringArrayVarP(&o.passphrases, "passphrase", "p", nil, usage)
}

func (o *recordOptions) addMode(cmd *cobra.Command, usage string) {
	var b strings.Builder
	b.WriteString(usage)
	for _, m := range wrap.Modes() {
		fmt.Fprintf(&b, "\n  %s: %s", m, m.Description())
	}
	cmd.Flags().StringVarP(&o.mode, "mode", "m", string(wrap.DefaultMode), b.String())
}

// writeRecords writes one record per share. With passphrases, record i is
// wrapped under passphrases[i].
func (o *recordOptions) writeRecords(w io.Writer, set *fpshamir.ShareSet) error {
	if err := o.checkPassphrases(len(set.Shares)); err != nil {
		return err
	}

	m, err := wrap.ParseMode(o.mode)
	if err != nil {
		return err
	}

	records, err := set.Records()
	if err != nil {
		return err
	}

	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode share %d: %w", i+1, err)
		}

		line := string(data)
		if len(o.passphrases) > 0 {
			line, err = wrap.SealWithParams(data, o.passphrases[i], m, kdfParams)
			if err != nil {
				return fmt.Errorf("failed to wrap share %d: %w", i+1, err)
			}
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write share %d: %w", i+1, err)
		}
	}

	logging.Info("wrote share records",
		logging.String("set", set.ID.String()),
		logging.Int("shares", len(set.Shares)),
		logging.Int("threshold", set.Threshold),
		logging.Int("wrapped", len(o.passphrases)),
	)
	return nil
}

func (o *recordOptions) checkPassphrases(n int) error {
	if len(o.passphrases) != 0 && len(o.passphrases) != n {
		return fmt.Errorf("got %d passphrases for %d shares, need one per share", len(o.passphrases), n)
	}
	return nil
}

// readRecords reads share records line by line and merges them. Plain lines
// are JSON; any other line is tried against every passphrase and skipped when
// none opens it.
func (o *recordOptions) readRecords(r io.Reader) (*fpshamir.ShareSet, error) {
	var records []*fpshamir.ShareSet

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxRecordLine)

	for lineNo := 1; s.Scan(); lineNo++ {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}

		data := []byte(line)
		if !strings.HasPrefix(line, "{") {
			var err error
			data, err = o.unwrap(line)
			if err != nil {
				return nil, fmt.Errorf("failed to read share on line %d: %w", lineNo, err)
			}
			if data == nil {
				logging.Warn("skipping share record no passphrase opens", logging.Int("line", lineNo))
				continue
			}
		}

		var rec fpshamir.ShareSet
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to read share on line %d: %w", lineNo, err)
		}
		records = append(records, &rec)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shares: %w", err)
	}

	set, err := fpshamir.Merge(records...)
	if err != nil {
		return nil, err
	}

	logging.Info("read share records",
		logging.String("set", set.ID.String()),
		logging.Int("shares", len(set.Shares)),
		logging.Int("threshold", set.Threshold),
	)
	return set, nil
}

// unwrap returns nil data when no passphrase opens line.
func (o *recordOptions) unwrap(line string) ([]byte, error) {
	for _, p := range o.passphrases {
		data, err := wrap.Open(line, p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, wrap.ErrDecrypt) {
			return nil, err
		}
	}
	return nil, nil
}
