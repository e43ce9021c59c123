// Package migrate orchestrates moving a GitLab group hierarchy, its
// projects, and their resources onto another instance, journaling every
// status transition so an interrupted run resumes without repeating
// finished work.
package migrate
