/*
Package operation runs patch steps against a source tree.

	+--------------+      +----------+
	| Orchestrator | ---> |  backup  |
	|  (per step)  |      +----------+
	+------+-------+
	       |
	+------+-------+
	|     text     |
	| (edit rules) |
	+--------------+

Each step moves through a small state machine:

	pending -> backed_up -> patched
	pending | backed_up -> failed

🔄 Flow per step:
 1. Resolve the target under the root, failing with ErrTargetNotFound
 2. Copy the target to its backup path
 3. Apply the step's rules in order against the cumulative content
 4. Write the result back over the target
 5. Signal completion through the Reporter

Every rule reports applied, skipped (guard present) or missed (nothing
matched). Missed rules are logged; with Options.Strict they fail the step
before the target is written.

The default runner is sequential and stops at the first failure, leaving
earlier steps applied. The parallel runner checks every target up front and
then patches files concurrently, one backup-then-write unit per file.
*/
package operation
