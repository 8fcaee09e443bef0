// Package main generates an Ed25519 key pair for signing access grants.
//
// The output is a pair of export lines for the private and public keys,
// ready to paste into the arena service environment.
package main

import (
	"os"

	"github.com/louisbranch/stakepot/internal/platform/config"
	"github.com/louisbranch/stakepot/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate access grant key: %v", err)
	}
}
