// Copyright © 2018 One Concern

package main

import "github.com/oneconcern/gitfat/cmd/git-fat/cmd"

func main() {
	cmd.Execute()
}
