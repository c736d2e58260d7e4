package main

import "github.com/Richardson-Media-House/kirbi-discord-antiraid/cmd"

func main() {
	cmd.Execute()
}
