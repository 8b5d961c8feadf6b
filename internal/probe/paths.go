package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// adminPaths are common management and CMS login locations.
var adminPaths = []string{
	"/admin",
	"/wp-admin",
	"/phpmyadmin",
	"/controlpanel",
	"/cp",
	"/administrator",
	"/console",
	"/login.php",
	"/admin.php",
	"/magento/admin",
}

// adminExposureProbe HEAD-requests each known admin path; a 200 means the
// interface is publicly reachable.
func adminExposureProbe(ctx context.Context, tgt *Target, opts Options) Result {
	const id, catalogID = "http.admin-exposure", 15

	client := newInsecureHTTPClient(opts, true)
	base := strings.TrimSuffix(tgt.URL(), "/")

	var exposed []string
	for _, path := range adminPaths {
		resp, err := doRequest(ctx, client, "HEAD", base+path, opts)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if resp.StatusCode == http.StatusOK {
			exposed = append(exposed, path)
		}
		drainAndClose(resp)
	}

	if len(exposed) == 0 {
		return compliant(id, catalogID, "No common administration or CMS login portals are publicly accessible.")
	}

	res := failure(id, catalogID,
		fmt.Sprintf("Sensitive management interface(s) detected: %s. Restrict them to internal networks or VPN.", strings.Join(exposed, ", ")), nil)
	res.Evidence = map[string]any{"paths": exposed}
	return res
}
