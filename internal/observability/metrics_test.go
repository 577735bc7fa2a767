package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("POST", "/v1/locate", 200, 12*time.Millisecond)
	RecordUpstreamCall("ok", 24*time.Millisecond)
	RecordUpstreamCall("transport_error", 3*time.Millisecond)
	RecordCacheLookup(true)
	RecordCacheLookup(false)
}
