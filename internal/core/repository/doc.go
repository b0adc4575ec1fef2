// Package repository keeps local working copies of rule repositories in step
// with the configured repository list.
//
// Working-copy locations are derived from the repository URL by
// [WorkingCopyName]. The [Synchronizer] clones missing working copies and
// refreshes existing ones, one repository at a time; a failure is reported
// and the batch moves on to the next repository.
package repository
