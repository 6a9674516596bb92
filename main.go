package main

import "github.com/kevinaaaquil/novels/cmd"

func main() {
	cmd.Execute()
}
