// Command fake-braintree serves an in-memory stand-in for the Braintree
// gateway API.
//
//	go run . serve --addr :3000
//
// Configure the client library with merchant id, public key and private key
// "xxx" and point it at the server. See `fake-braintree --help`.
package main

import (
	"os"

	"github.com/robertjwhitney/fake-braintree/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
