package request

type (
	Request struct {
		Url     string
		Method  string
		Headers []Headers
		Payload interface{}

		// MaxBytes caps how much of the response body is read. Zero means DefaultMaxBytes.
		MaxBytes int64
	}

	Headers struct {
		Key   string
		Value string
	}

	// Response is a fetched body with the headers that matter to callers.
	Response struct {
		StatusCode  int
		ContentType string
		Body        []byte
	}
)
