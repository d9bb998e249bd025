package main

import "github.com/ekvall/seqdeliver/cmd/seqdeliver-verify/cmd"

func main() {
	cmd.Execute()
}
