package main

import "github.com/datnt-sec/webcomply/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
