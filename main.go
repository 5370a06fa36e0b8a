// The main package for the survivor executable.
package main

import (
	"github.com/JakeFAU/survivor-stats/cmd"
)

func main() {
	cmd.Execute()
}
