package main

import (
	"fmt"
	"os"

	cmd "github.com/cozy-creator/tf-adapter/cmd/tfadapter"
)

func main() {
	if err := cmd.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
