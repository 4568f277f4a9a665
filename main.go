/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tristendillon/minireact/cmd"

func main() {
	cmd.Execute()
}
