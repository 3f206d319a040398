// Package schema reads and writes documents.
//
// Documents are stored as versioned JSON or YAML:
//
//	{
//	  "version": 2,
//	  "title": "my post",
//	  "title_in_post": false,
//	  "modules": [
//	    {"id": "a1", "plugin": "text", "data": {"contents": "hi"},
//	     "sends": ["output"], "named_sends": {"b2": ["style"]},
//	     "graph_pos": {"x": 0, "y": 0}, "title": ""}
//	  ]
//	}
//
// Version 1 files (camelCase keys, no named sends) are migrated on load.
// Files are always written in the current version.
package schema
