package main

import "github.com/Layr-Labs/rewards-ledger/cmd"

func main() {
	cmd.Execute()
}
