// Command crawler collects freelance listings from Coconala, CrowdWorks and
// Lancers.
//
// Exit status is 2 when the input or configuration is rejected before any
// crawl starts and 1 when a crawl fails.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/baxromumarov/gig-crawler/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
