/*
Package runtime evaluates document graphs.

An evaluation pass walks edges backward from a target module (or the virtual
output sink), transforming each module at most once after all of its inputs
have resolved. Independent subtrees run concurrently. Failures are returned
as structured results attributed to the module that caused them.
*/
package runtime
