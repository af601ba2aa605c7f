/*
Package migrate declares the core types and contracts of the balance
migration service.

The service moves a user's balance from a deprecated ledger to its
successor exactly once per account. The root package holds the data
model (addresses, amounts, account records) and the interfaces through
which the core reaches its external collaborators: the two ledger
gateways, the idempotency key-value store and the distributed lock.
Implementations live in subpackages, the orchestration itself in the
migration package.
*/
package migrate
