// Command portal serves the service desk portal.
//
// The configuration profile is selected with CONFIG_TYPE (development,
// testing or production). Log records are written to logs/flaskapp.log,
// relative to the working directory; the logs directory must exist.
package main

import (
	"fmt"
	"os"

	"github.com/gaborage/servicedesk-portal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}
