// Command reelgraph serves and analyses movie co-occurrence graphs.
package main

func main() {
	Execute()
}
