/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/bioenroll/gateway/cmd"

func main() {
	cmd.Execute()
}
