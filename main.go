// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/psgcapi/psgc/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
