// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/nitchau/handyman-sub001/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
