package main

import "github.com/identity-platform/profile-saga/cmd/profile-saga/cmd"

func main() {
	cmd.Execute()
}
