// Package board holds the pure state transitions of a kanban board.
//
// Every mutation is a value whose Apply method takes the prior board and the
// pipeline and returns the next board. Apply never modifies the prior board:
// on success it returns a fresh copy, on rejection it returns the prior board
// together with an error from pkg/types explaining why nothing happened.
// Selectors in this package read a board without changing it.
package board
