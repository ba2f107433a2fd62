package main

import "github.com/LegacyCodeHQ/attest/cmd"

func main() {
	cmd.Execute()
}
