/*
Package status records the result of each patch run in a lock file.

The lock lives at the root of the patched tree (.patchrc.lock by default)
and holds, per step, the resolved target, its backup path, the final state,
SHA-256 checksums before and after patching, and every rule outcome. It is
rewritten atomically after each non-dry run, including failed ones, so the
last attempt can always be inspected.
*/
package status
