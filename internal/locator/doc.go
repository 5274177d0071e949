// Package locator finds the Python virtual environment nearest to a file by
// walking up its ancestor directories, optionally stopping at a workspace
// boundary. Results are recomputed on every call and never cached.
package locator
