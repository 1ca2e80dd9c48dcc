package main

import "github.com/Yushi-Xing/axi-pipeline/cmd"

func main() {
	cmd.Execute()
}
