package githubtrending

import (
	"trendwatch-backend/lib/restyutil"
	"trendwatch-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("trendwatch.lib.scrapers.githubtrending")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables request/response transcript dumps on
// clients created after this call.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
