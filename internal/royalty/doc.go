// Package royalty implements the royalty split model for a song catalog.
//
// # Model
//
//   - Contributor: a credited party (name, role, PRO affiliation, publisher).
//     Each ledger owns its own contributor snapshots; nothing is shared across songs.
//   - Ledger: the mutable, in-progress allocation of one Category among contributors.
//     Edits are unchecked against the running total; Validate enforces the
//     sum-to-100 rule at commit boundaries.
//   - Allocation: an immutable snapshot of a validated Ledger.
//   - SplitSet: the three allocations (music, lyrics, instrumental) of one song,
//     replaced as a unit by Commit.
//   - ConditionalSplit: a pre/post allocation pair for one category that flips
//     from PhasePre to PhasePost exactly once, when an Observation meets its Condition.
//
// # Numbers
//
// Percentages are integers in [0,100]. Currency amounts are integer cents.
// Neither is ever stored as floating point; SummaryPercentage is the only
// floating-point value and is derived on read.
//
// # Concurrency
//
// Ledger and SplitSet are not safe for concurrent use. ConditionalSplit guards
// its phase with a mutex so Evaluate may be called concurrently and out of order.
package royalty
