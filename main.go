// The main package for the spiritscraper executable.
package main

import (
	"github.com/JakeFAU/spirits-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
