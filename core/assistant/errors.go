package assistant

import "errors"

// ErrUnavailable covers everything between us and the model provider: network
// failures, auth rejections, quota exhaustion, malformed responses.
var ErrUnavailable = errors.New("assistant unavailable")
