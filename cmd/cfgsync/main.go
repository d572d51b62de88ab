package main

var (
	// Set by the release build.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute()
}
