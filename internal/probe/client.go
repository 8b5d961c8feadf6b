package probe

import (
	"context"
	"crypto/tls"
	"net/http"
)

// newHTTPClient builds the throwaway client used by a single probe
// invocation. Redirect behaviour differs per probe, hence the parameter.
func newHTTPClient(opts Options, followRedirects bool) *http.Client {
	client := &http.Client{
		Timeout: opts.HTTPTimeout,
	}
	if !followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// newInsecureHTTPClient is like newHTTPClient but skips certificate
// verification, for probes that inspect responses rather than trust.
func newInsecureHTTPClient(opts Options, followRedirects bool) *http.Client {
	client := newHTTPClient(opts, followRedirects)
	client.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return client
}

// doRequest issues a single request with the probe's User-Agent. The caller
// owns the response body.
func doRequest(ctx context.Context, client *http.Client, method, url string, opts Options) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	return client.Do(req)
}

// drainAndClose discards and closes a response body so connections can be
// reused within the probe's lifetime.
func drainAndClose(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
}
