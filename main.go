package main

import (
	"fmt"

	"github.com/lmazzoli/web2048-rl/benchmarks"
)

// main entry point to the benchmarks and bridges
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
