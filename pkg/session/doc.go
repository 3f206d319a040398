/*
Package session implements document access and persistence orchestration.

It serializes concurrent reads and writes of stored documents, combining
per-process locks with an optional distributed locker so that several
server replicas can share one store.
*/
package session
