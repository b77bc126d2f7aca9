package ui

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	flame = "\033[38;5;208m"

	clearAndHome = "\033[H\033[2J"
)

// Banner renders the one-line wordmark shown before the tracer's first window
// arrives and by the version flag.
func Banner() string {
	return bold + flame + "nfstop" + reset + dim + "  per-credential NFS server I/O" + reset + "\n"
}
