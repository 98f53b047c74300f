// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nitchau/handyman-sub001/quote"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Work with quote requests",
}

var quoteValidateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Validate a quote request JSON document (stdin when FILE is - or absent)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)

		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}

		if err != nil {
			return fmt.Errorf("reading quote request: %w", err)
		}

		req, violations, err := quote.ValidateJSON(data)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if len(violations) > 0 {
			if err := enc.Encode(map[string]any{"valid": false, "violations": violations}); err != nil {
				return err
			}

			return errors.New("quote request is invalid")
		}

		return enc.Encode(map[string]any{"valid": true, "request": req})
	},
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quoteValidateCmd)
}
