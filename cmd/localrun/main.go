// Command localrun is a thin entrypoint over the localrun package: it
// reads epoch sizing from the environment and runs one epoch.
package main

import (
	"fmt"
	"os"

	"spectrum-core/localrun"
)

func main() {
	if err := localrun.Run(localrun.ConfigFromEnv()); err != nil {
		fmt.Fprintln(os.Stderr, "localrun:", err)
		os.Exit(1)
	}
	fmt.Println("localrun: epoch complete, all channel accumulators match expected contents")
}
