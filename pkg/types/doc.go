// Package types defines the Task record, the Database storage contract,
// configuration, and the standard error values shared by every storage
// backend of the todo tool.
package types
