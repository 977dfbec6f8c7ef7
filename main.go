package main

import "dtek-outage-monitor/internal/cmd"

func main() {
	cmd.Execute()
}
