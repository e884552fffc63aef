// Package models defines the core domain entities for MoneyMatters.
//
// # Entity Graph
//
// User is the root aggregate. Everything a user owns hangs off it:
//   - Account: a bank/card account, owner of Transactions
//   - Bill: a recurring obligation, optionally tied to a default Account
//   - IncomeStream: an expected income source, tied to its funding Account
//   - Goal: a savings goal, linked to source Accounts through GoalAccount
//   - Alert: a system-generated notification with a small state machine
//   - ForecastSnapshot: a cached cash-flow projection result
//   - Setting: a per-user key/value preference
//
// # Identity and Timestamps
//
// Every entity carries a UUID identifier, a CreatedAt set once at insert, and
// an UpdatedAt refreshed on every successful mutation. Both timestamps are UTC;
// after the first mutation UpdatedAt is strictly greater than CreatedAt.
//
// # Ownership and Deletion
//
// Lifetime relationships (User->Account, Account->Transaction, ...) cascade on
// delete. Categorization links (Transaction.BillID, Alert.RelatedGoalID, ...)
// are nullified instead: a Transaction is a durable ledger record and must not
// disappear just because a Bill or Goal it pointed at was removed. The full
// relationship table lives in the storage schema.
//
// # Design Principles
//
//  1. **No back-pointers**: relationships are scalar foreign-key IDs on the
//     "many" side; reverse collections are reconstructed by indexed queries.
//  2. **Exact money**: monetary fields are decimal.Decimal with two fractional
//     digits, never floats.
//  3. **Stable discriminants**: enum values persist as fixed integers; new
//     variants are appended, existing ones are never renumbered.
package models
