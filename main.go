package main

import "netmonlabs/netmon/cmd"

func main() {
	cmd.Execute()
}
