// Package cycle runs one discovery and settings reconciliation pass for an
// active file: locate the nearest virtual environment, point the
// interpreter setting at it, then bring each analysis namespace in line
// with the discovered project while leaving user-added entries alone.
package cycle
