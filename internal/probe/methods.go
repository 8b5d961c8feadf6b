package probe

import (
	"context"
	"fmt"
	"strings"
)

// dangerousMethods are HTTP methods that should never be accepted on a
// public web endpoint.
var dangerousMethods = []string{"PUT", "DELETE", "TRACE", "CONNECT"}

// methodsProbe attempts each dangerous method; any 2xx answer means the
// server actually processed it.
func methodsProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "http.methods", 14

	client := newInsecureHTTPClient(opts, false)

	var accepted []string
	reachable := false
	for _, method := range dangerousMethods {
		resp, err := doRequest(ctx, client, method, tgt.URL(), opts)
		if err != nil {
			continue
		}
		reachable = true
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			accepted = append(accepted, fmt.Sprintf("%s (%d)", method, resp.StatusCode))
		}
		drainAndClose(resp)

		if ctx.Err() != nil {
			break
		}
	}

	if !reachable {
		return failure(id, catalogID, "Could not reach the target to test HTTP methods.", ctx.Err())
	}

	if len(accepted) == 0 {
		return compliant(id, catalogID, "Server rejects dangerous HTTP methods (PUT, DELETE, TRACE, CONNECT).")
	}

	res := failure(id, catalogID,
		fmt.Sprintf("Server accepts dangerous HTTP method(s): %s. Disable or restrict them.", strings.Join(accepted, ", ")), nil)
	res.Evidence = map[string]any{"accepted": accepted}
	return res
}
