/*
Package horizon implements the ledger gateway contracts on top of the
Horizon HTTP API of both chains.

The old ledger side is read only. The new ledger side submits
transactions through a pool of channel accounts so that concurrent
migrations do not contend on a single sequence number; every
transaction is signed by both the channel (source) and the funding
account (operation source).
*/
package horizon
