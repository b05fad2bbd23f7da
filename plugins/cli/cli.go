package cli

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
)

func printUsage() {
	_, err := fmt.Fprintf(
		os.Stderr,
		"\n"+
			"%s %s\n\n"+
			"  A node following the milestones of the IOTA coordinator.\n\n"+
			"Usage:\n\n"+
			"  %s [OPTIONS]\n\n"+
			"Options:\n\n",
		AppName,
		AppVersion,
		filepath.Base(os.Args[0]),
	)
	if err != nil {
		panic(err)
	}

	flag.PrintDefaults()
}
