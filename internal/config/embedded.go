package config

// Build-time values injected via ldflags. They act as defaults and can be
// overridden by environment variables or the config file.
//
// Build with:
//   go build -ldflags "-X 'github.com/zhadevv/anichin/internal/config.Version=1.2.0' \
//                      -X 'github.com/zhadevv/anichin/internal/config.EmbeddedBaseURL=https://anichin.cafe'"
var (
	Version         = "dev"
	EmbeddedBaseURL string
)
