// Command racebot serves the race and economy API and manages its schema.
package main

func main() {
	Execute()
}
