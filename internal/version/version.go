// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
	// DBVersion is the database release being served, e.g. "2022.10.28".
	DBVersion = "unknown"
)

// Short returns Version with the abbreviated commit appended, e.g.
// "0.4.0+4f2a9c1". The commit is omitted when unknown.
func Short() string {
	if Commit == "" || Commit == "unknown" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + "+" + c
}
