// Command tlang checks and runs tlang programs given as AST documents.
package main

import "github.com/funvibe/tlang/pkg/cli"

func main() {
	cli.Run()
}
