package main

import "github.com/ekvall/seqdeliver/cmd/seqdeliver-stage/cmd"

func main() {
	cmd.Execute()
}
