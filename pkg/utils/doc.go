// Package utils holds small helpers shared by the store packages: UUID slice
// handling and the JSON file persistence used by the file-backed repositories.
package utils
