// Package decide implements the incremental scan predicate: given a file's
// current stat and its catalog's prior record, classify the file as an
// addition, a modification, or unchanged.
package decide
