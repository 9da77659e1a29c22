/*
Package queue defines the tasks that can be performed to grow a tree, each
the split of a leaf on a criterion with a purity gain, and a Queue that
ranks them so the most valuable task is always performed first.
*/
package queue
