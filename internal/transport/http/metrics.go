package httptransport

import "expvar"

var (
	metricBetPlaceTotal  = expvar.NewInt("bet_place_total")
	metricBetPlaceErrors = expvar.NewInt("bet_place_errors_total")

	metricAccountOpenTotal = expvar.NewInt("account_open_total")
	metricAdminAdjustTotal = expvar.NewInt("admin_adjust_total")
)
