// Package main is the entry point for the mpghistory CLI tool, which replays
// the match history of an MPG league into ratings, titles and records.
package main

import "github.com/pable/go-mpg-history/cmd"

func main() {
	cmd.Execute()
}
