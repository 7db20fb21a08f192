package main

import "github.com/CraigKelly/consensus/cmd"

// TODO: checkpointing for chains (so a run can be frozen and continued)

func main() {
	cmd.Execute()
}
