/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/sagadb/cmd/saga/cmd"

func main() {
	cmd.Execute()
}
