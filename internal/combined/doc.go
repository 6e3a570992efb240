// Package combined benchmarks the mailbox consumer loop piece by piece:
// stop check, report tick and queue pop measured together, the way
// mailbox.Run executes them for every message.
//
// The isolated benchmarks live next to each package. These capture the
// cumulative cost and the interaction between components.
package combined
