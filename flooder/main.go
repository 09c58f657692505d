package main

import "github.com/statsd-instrument/instrument/flooder/cmd/flood"

func main() {
	flood.Execute()
}
