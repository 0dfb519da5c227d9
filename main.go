package main

import "github.com/maximbilan/qianxun/cmd"

func main() {
	cmd.Execute()
}
