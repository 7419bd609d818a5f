/*
Package domain contains the core types shared by every qpilot layer.

It defines the wire-facing value types (Descriptor, CheckState, Image), the
argument enumerations that are validated before a command is sent
(MouseButton, WindowKind, Orientation), and the error taxonomy:
InvalidArgumentError for local validation failures, NotFoundError for
enumerated lookups that miss, and RemoteError for failures reported by the
probe. This package is kept pure and free of transport or I/O concerns,
following Hexagonal Architecture principles.

# Key Entities

  - Descriptor: one remote entity exactly as the probe reports it.
  - MouseButton, WindowKind, Orientation, Origin: argument enumerations.
  - RemoteError, NotFoundError, InvalidArgumentError: the three failure
    families callers are expected to distinguish.
*/
package domain
