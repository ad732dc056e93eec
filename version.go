package sdflang

// Version is the library version, overridable at link time.
var Version = "0.3.0"

// BuildDate is stamped by the build, "unknown" for plain go build.
var BuildDate = "unknown"
