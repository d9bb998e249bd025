package main

import "github.com/ekvall/seqdeliver/cmd/seqdeliver-status/cmd"

func main() {
	cmd.Execute()
}
