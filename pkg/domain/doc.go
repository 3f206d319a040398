/*
Package domain contains the core document model shared by every other package.

It defines the module graph (Modules, positional and named edges, the virtual
output sink), the snapshot type the history stores, change descriptors and the
evaluation lifecycle events. The package is kept pure and free of I/O so that
stores, the evaluator and the editor can all depend on it.

# Key Entities

  - Module: a node holding a plugin kind, plugin-owned data and outgoing edges.
  - DocumentState: an immutable snapshot of title, title placement and modules.
  - Change: what kind of edit produced a snapshot, used for history coalescing.
  - EvalHooks: callbacks fired around evaluation passes and module transforms.
*/
package domain
