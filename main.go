package main

import "github.com/kiesman99/watermark/cmd"

func main() {
	cmd.Execute()
}
