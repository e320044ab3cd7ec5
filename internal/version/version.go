package version

import "github.com/prometheus/common/version"

// Set at link time through -ldflags, see Makefile.
var (
	Branch   = "unknown"
	Revision = "unknown"
)

func init() {
	if Branch != "unknown" {
		version.Branch = Branch
	}

	if Revision != "unknown" {
		version.Revision = Revision
	}
}
