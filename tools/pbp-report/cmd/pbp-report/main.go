package main

import (
	"fmt"
	"os"

	"github.com/tyler180/nfl-pbp-reports/tools/pbp-report/internal/app/pbpreport"
)

func main() {
	if err := pbpreport.New(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
