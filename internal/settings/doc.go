// Package settings models the editor's hierarchical configuration as a
// key/value store. The workspace settings file is the store: VS Code style
// settings.json with flat dotted keys, or pyproject.toml with nested tables.
// Values are read and written in place so unrelated keys and, for JSON, the
// file's formatting survive every write.
package settings
