package main

import "github.com/notargets/gobeamcontact/cmd"

func main() {
	cmd.Execute()
}
