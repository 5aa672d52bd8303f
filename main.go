package main

import "github.com/calens/finch/cmd"

func main() {
	cmd.Execute()
}
