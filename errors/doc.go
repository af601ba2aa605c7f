/*
Package errors implements the error taxonomy of the migration service.

Each failure class is represented by a root error registered with a
unique code. Errors created during runtime wrap one of the roots with
Wrap or Wrapf, which allows testing with Is and translating any error
into a stable machine readable code plus an HTTP status at the
transport boundary. An error that does not wrap a registered root is
considered internal and its message is redacted before leaving the
process.

There is also support for stacktraces. A stacktrace is attached on the
first Wrap of an error, so create errors via Wrap/Wrapf at the point of
failure. Use %+v in formatting directives to render the full trace.
*/
package errors
