// Package log provides named component loggers on top of the standard
// library logger.
//
// Each component asks for its own logger once and keeps it:
//
//	var logger = log.ForService("search")
//
//	logger.Infof("%d entries matched", n)
//	logger.Debugf("query %+v", q) // only with debug enabled
//
// Lines look like:
//
//	2024/06/15 10:04:05.123456 INFO [search>] 3 entries matched
//
// Debug output is off by default. SetGlobalDebug enables it everywhere (the
// CLI's --debug flag), EnableDebugFor enables it for one component.
//
// SetOutput redirects all loggers at once, which tests use to capture output
// in a bytes.Buffer. The package name collides with the standard library's
// log; alias one of them when both are needed.
package log
