// Package runtime provides the execution context for patchstack commands.
//
// It encapsulates shared dependencies needed by actions, such as the
// resolved configuration, the logger, and the invocation root.
package runtime
