// Package jobs provides scheduled background tasks for the order core.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic operations the system needs.
//
// # Available Jobs
//
// 1. SettlementJob - Scans the ledger for sub-orders whose settlement delay
// elapsed and releases funds to their sellers
// 2. InventorySyncJob - Drains the mirror sync outbox and applies pending
// stock adjustments to the storefront mirror
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(settleHandler, syncHandler, schedules, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Both jobs take six-field cron expressions with a seconds column, so scan
// intervals down to one second are expressible. The schedules come from
// configuration; settlement typically runs far less often than the sync
// drain.
//
// # Error Handling
//
// - Both jobs log failures and wait for the next tick; nothing is fatal
// - Settlement skips ineligible orders silently, they are expected
// - Failed job starts will stop any already running jobs
package jobs
