// Package watch turns editor notifications and filesystem changes into
// cycle triggers. Editor events arrive as JSON lines; venv folders
// appearing or disappearing are picked up with fsnotify. All triggers are
// funnelled through a Dispatcher so at most one cycle runs at a time.
package watch
