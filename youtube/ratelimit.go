package youtube

import (
	"net/http"

	"golang.org/x/time/rate"
)

// throttledTransport waits on a token bucket before every request.
type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// throttle returns a copy of client limited to rps requests per second.
// A non-positive rps returns client unchanged.
func throttle(client *http.Client, rps float64) *http.Client {
	if rps <= 0 {
		return client
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	throttled := *client
	throttled.Transport = &throttledTransport{base: base, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
	return &throttled
}
