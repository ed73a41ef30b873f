package main

import "github.com/joseph-ayodele/extraction-bench/cmd/extractbench/cmd"

func main() {
	cmd.Execute()
}
