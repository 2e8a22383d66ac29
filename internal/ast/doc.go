// Package ast describes parsed program lines.
//
// A program is a flat slice of statements, one per source line, plus jump
// tables computed by parser.Build. There is no statement tree: blocks are
// the ranges between an opener and its matching 'end'.
package ast
