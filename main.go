package main

import "github.com/xvierd/wellflow/cmd"

func main() {
	cmd.Execute()
}
