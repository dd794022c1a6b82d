// Package models defines the persisted catalog records for royaltysplit.
//
// # Models
//
//   - Song: a catalog entry owned by one artist, carrying at most one split set
//   - SplitData: the stored form of a split set, one entry list per category
//   - ConditionalRecord: the stored form of a conditional split
//
// The validated in-memory types live in internal/royalty. Records convert to
// and from them at the storage boundary; a record read back from the database
// is validated again before use.
//
// # Design Principles
//
//  1. **Integers only**: percentages and amounts are stored as integers so the
//     sum-to-100 rule stays exact
//  2. **Snapshots, not references**: each song owns its contributor entries;
//     nothing is shared between songs
//  3. **IDs, not pointers**: records refer to each other by ID strings
package models
