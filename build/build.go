package build

// Set through -ldflags "-X github.com/dutchcoders/text4shell-scanner/build.ReleaseTag=..."
var (
	ReleaseTag = "0.0.0-dev"
	BuildDate  = "unknown"
)
