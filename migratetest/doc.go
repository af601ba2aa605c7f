/*
Package migratetest provides in-memory implementations of the external
collaborator contracts (key-value store, distributed lock, ledger
gateways), to be used only in tests.
*/
package migratetest
