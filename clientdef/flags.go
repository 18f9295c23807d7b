package clientdef

// Flags understood by the client. They precede the configuration file path.
const (
	FlagExcludeResponseHeaders = "--exclude-response-headers"
	FlagSilent                 = "--silent"
	FlagVersion                = "--version"
)

// Exit statuses reported by the client. ExitTransportError and ExitHTTPError are only used
// in silent mode; otherwise any failure is ExitFailure.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitTransportError = 2
	ExitHTTPError      = 3
)
