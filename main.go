package main

import (
	"fmt"
	"os"

	"spectrum-core/localrun"
)

func main() {
	// go run . localrun
	if len(os.Args) > 1 && os.Args[1] == "localrun" {
		if err := localrun.Run(localrun.ConfigFromEnv()); err != nil {
			fmt.Fprintln(os.Stderr, "localrun:", err)
			os.Exit(1)
		}
		fmt.Println("localrun: epoch complete, all channel accumulators match expected contents")
		return
	}

	fmt.Fprintln(os.Stderr, "usage: go run . localrun")
	os.Exit(2)
}
