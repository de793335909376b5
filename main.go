package main

import "github.com/soocke/plaque-overlay/cmd"

func main() {
	cmd.Execute()
}
