package ledger

import "expvar"

var (
	metricCreditTotal        = expvar.NewInt("ledger_credit_total")
	metricDebitTotal         = expvar.NewInt("ledger_debit_total")
	metricDebitRejected      = expvar.NewInt("ledger_debit_rejected_total")
	metricCompensationTotal  = expvar.NewInt("ledger_compensation_total")
	metricCompensationFailed = expvar.NewInt("ledger_compensation_failed_total")
	metricStoreErrors        = expvar.NewInt("ledger_store_errors_total")
	metricUnknownOutcome     = expvar.NewInt("ledger_unknown_outcome_total")
	metricNotifyLate         = expvar.NewInt("ledger_notify_late_total")
)
