package main

import "github.com/meysamhadeli/shaderinc/cmd"

func main() {
	cmd.Execute()
}
