// SPDX-License-Identifier: MPL-2.0

// Command kiln bakes declarative dev-container recipes into images.
package main

import (
	cmd "kiln-cli/cmd/kiln"
)

func main() {
	cmd.Execute()
}
