package version

// Set at build time with -ldflags "-X github.com/Layr-Labs/rewards-ledger/internal/version.Version=..."
var (
	Version = "unversioned"
	Commit  = "unknown"
)

func GetVersion() string {
	return Version
}

func GetCommit() string {
	return Commit
}
