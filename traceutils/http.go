package traceutils

import (
	"net/http"
	"net/http/httputil"

	"go.uber.org/zap"

	"github.com/bitmark-inc/image-host/log"
)

// DumpRequestHeaders dumps the request line and headers of a request.
// The body is left out since image payloads are large base64 blobs.
func DumpRequestHeaders(req *http.Request) string {
	dump, err := httputil.DumpRequest(req, false)
	if err != nil {
		log.Warn("fail to dump request", zap.Error(err))
		return ""
	}

	return string(dump)
}
