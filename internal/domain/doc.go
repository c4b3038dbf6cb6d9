// Package domain contains the core entities of the recognition mock: tasks,
// image submissions and their synthetic results, together with the submission
// lifecycle rules. It has no dependency on storage or transport.
package domain
