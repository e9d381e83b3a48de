package http

import "net/http"

type authTransport struct {
	header    string
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		if t.header == "Authorization" {
			reqCopy.Header.Set(t.header, "Bearer "+t.token)
		} else {
			reqCopy.Header.Set(t.header, t.token)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends the token as a standard Bearer Authorization header.
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    "Authorization",
			token:     token,
			transport: rt,
		}
	})
}

// WithAPIKeyHeader sends the token verbatim in a custom header, for
// services that do not use the Authorization scheme.
func WithAPIKeyHeader(header, token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    header,
			token:     token,
			transport: rt,
		}
	})
}
