package restclient

// ResponseModel is the envelope remote services wrap their payloads in.
// Error responses are expected to fill Messages.
type ResponseModel[T any] struct {
	Messages []string `json:"messages"`
	Data     T        `json:"data"`
}
