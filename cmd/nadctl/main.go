// nadctl is a command-line remote for NAD receivers speaking the TCP
// control protocol.
package main

import "os"

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
