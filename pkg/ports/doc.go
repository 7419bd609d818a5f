/*
Package ports defines the driven ports (interfaces) for the qpilot client.

These interfaces decouple the core object model from external
implementations, allowing the client to talk to a live probe over TCP in
production and to an in-memory channel in tests.

# Key Interfaces

  - Channel: the command link carrying action verbs and their replies.
  - Locker: exclusive access to one application under test across runners.
*/
package ports
