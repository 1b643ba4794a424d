package version

const (
	ServiceName = "release-service"
	Version     = "1.0.0"
)
