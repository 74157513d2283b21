// Package sim drives a registry through spawn/release churn and reports how
// the pools behaved. It backs the "tagpool simulate" command and doubles as
// an end-to-end exercise of the pool, metrics and tracing packages.
//
// Each worker holds at most Plan.Live objects per tag. Once that limit is
// exceeded the oldest object is released, so steady-state churn recycles
// instead of growing.
package sim
