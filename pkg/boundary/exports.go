package boundary

// Names of the functions a compiled module exports.  All parameters and
// results are i32.  A result of 0 signals failure.
const (
	// ExportCreate creates a session.
	// Signature: create() -> handle
	ExportCreate = "create"

	// ExportFree destroys a session.
	// Signature: free(handle)
	ExportFree = "free"

	// ExportExec executes the command text staged at addr.
	// Signature: exec(addr, len, handle) -> result
	ExportExec = "exec"

	// ExportListBindings lists the variables bound in a session.
	// Signature: list_bindings(handle) -> result
	ExportListBindings = "list_bindings"

	// ExportReserve reserves a buffer in module memory.
	// Signature: reserve(size) -> addr
	ExportReserve = "reserve"

	// ExportRelease releases a reserved buffer.
	// Signature: release(addr, size)
	ExportRelease = "release"

	// ExportReleaseText releases a length-prefixed result buffer.
	// Signature: release_text(result)
	ExportReleaseText = "release_text"
)

// Exports lists every function a compiled module must export.
var Exports = []string{
	ExportCreate,
	ExportFree,
	ExportExec,
	ExportListBindings,
	ExportReserve,
	ExportRelease,
	ExportReleaseText,
}
