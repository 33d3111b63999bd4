package main

import "github.com/metal-toolbox/sffinfo/cmd"

func main() {
	cmd.Execute()
}
