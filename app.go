package main

import "github.com/masmgr/lastchanges-go/cmd"

func main() {
	cmd.Run()
}
