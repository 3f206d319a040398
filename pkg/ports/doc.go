/*
Package ports defines the driven ports (interfaces) for prechoster.

These interfaces decouple documents and evaluation from external
implementations, allowing the editor to work with various storage backends.

# Key Interfaces

  - DocumentStore: Responsible for persisting and loading documents.
  - BlobStore: Holds binary module outputs behind URL handles.
  - DistributedLocker: Provides distributed locking for concurrent document writes.
*/
package ports
