// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode LAT LNG",
	Short: "Reverse geocode a coordinate pair and print the address as JSON",
	Example: `  handyman geocode 42.3736 -71.1097
  handyman geocode -- -34.9011 -56.1645`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newGeocodeService(cmd.Context(), nil)

		addr, err := svc.Reverse(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(addr)
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
