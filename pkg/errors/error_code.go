package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeUnsupportedPair      ErrorCode = 101
	ErrCodeInvalidDateRange     ErrorCode = 102
	ErrCodeMissingCredentials   ErrorCode = 103
	ErrCodeInvalidMarket        ErrorCode = 104
	ErrCodeInvalidEndpoint      ErrorCode = 105
	ErrCodeUnsupportedWriter    ErrorCode = 106

	// Remote storage errors (200-299)
	ErrCodeNotFound       ErrorCode = 200
	ErrCodeAuthFailed     ErrorCode = 201
	ErrCodeTransient      ErrorCode = 202
	ErrCodeListFailed     ErrorCode = 203
	ErrCodeFetchCancelled ErrorCode = 204

	// Decoding errors (300-399)
	ErrCodeFormat           ErrorCode = 300
	ErrCodeDecompressFailed ErrorCode = 301
	ErrCodeMissingHeader    ErrorCode = 302
	ErrCodeMalformedRow     ErrorCode = 303
	ErrCodeMissingColumn    ErrorCode = 304

	// Local I/O errors (400-499)
	ErrCodeIO               ErrorCode = 400
	ErrCodeOutputDirMissing ErrorCode = 401
	ErrCodeWriteFailed      ErrorCode = 402
	ErrCodeReadFailed       ErrorCode = 403
)

// Kind groups error codes into the taxonomy callers branch on.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidConfiguration
	KindNotFound
	KindAuth
	KindTransient
	KindFormat
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "InvalidConfiguration"
	case KindNotFound:
		return "NotFound"
	case KindAuth:
		return "AuthError"
	case KindTransient:
		return "TransientError"
	case KindFormat:
		return "FormatError"
	case KindIO:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Kind returns the taxonomy bucket the code belongs to.
func (c ErrorCode) Kind() Kind {
	switch {
	case c >= 100 && c < 200:
		return KindInvalidConfiguration
	case c == ErrCodeNotFound:
		return KindNotFound
	case c == ErrCodeAuthFailed:
		return KindAuth
	case c >= 200 && c < 300:
		return KindTransient
	case c >= 300 && c < 400:
		return KindFormat
	case c >= 400 && c < 500:
		return KindIO
	default:
		return KindUnknown
	}
}
