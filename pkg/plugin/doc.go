/*
Package plugin defines the capability contract every module kind implements
and the registry that lazily resolves kinds to capabilities.

A capability is looked up by its kind string. Until a kind is loaded, the
registry hands out an Unloaded placeholder whose operations always fail;
the evaluator resolves every kind in a document before a pass starts.
*/
package plugin
