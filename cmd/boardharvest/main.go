// Command boardharvest downloads every image of a Pinterest board.
package main

func main() {
	Execute()
}
