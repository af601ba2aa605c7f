/*
Package migration implements the core of the service: burn
verification and the orchestration state machine that brings the new
ledger to the correct state exactly once per address.

The Verifier answers "is this address burned, and for how much" using
the old ledger and the idempotency store. The Service wraps the
decision procedure in the per-address distributed lock and consults
the store to short-circuit repeated requests. Races between the cached
view and the ledger are absorbed by treating contradicting submission
outcomes as authoritative: a payment bouncing off a missing account
falls back to creation, a creation bouncing off an existing account is
the signature of a concurrent migration that won.
*/
package migration
